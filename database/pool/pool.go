// Package pool owns the PostgreSQL connection pool behind the directory.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const (
	DefaultMaxConns      = 10
	DefaultIdleTimeout   = 5 * time.Minute
	DefaultAbsTimeout    = 30 * time.Minute
	DefaultStatsInterval = 15 * time.Second
)

// Options tunes the underlying database/sql pool.
type Options struct {
	Name          string // logical database name, used in logs and metrics
	MaxConns      int
	IdleTimeout   time.Duration
	AbsTimeout    time.Duration
	StatsInterval time.Duration

	// OnStats, if set, is called with a snapshot every StatsInterval and
	// once more on Close.
	OnStats func(name string, s sql.DBStats)
}

func (o Options) withDefaults() Options {
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.AbsTimeout <= 0 {
		o.AbsTimeout = DefaultAbsTimeout
	}
	if o.StatsInterval <= 0 {
		o.StatsInterval = DefaultStatsInterval
	}
	return o
}

// Pool wraps *sql.DB with tuning and a stats reporting routine.
type Pool struct {
	db        *sql.DB
	opts      Options
	statsStop chan struct{}
	statsDone chan struct{}
	closeOnce sync.Once
}

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, connStr string, opts Options) (*Pool, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	p := New(db, opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.PingContext(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return p, nil
}

// New tunes db according to opts and starts the stats routine.
func New(db *sql.DB, opts Options) *Pool {
	opts = opts.withDefaults()

	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(max(1, opts.MaxConns/2))
	db.SetConnMaxLifetime(opts.AbsTimeout)
	db.SetConnMaxIdleTime(opts.IdleTimeout)

	p := &Pool{
		db:        db,
		opts:      opts,
		statsStop: make(chan struct{}),
		statsDone: make(chan struct{}),
	}
	p.startStatsRoutine()
	return p
}

func (p *Pool) Name() string { return p.opts.Name }

func (p *Pool) startStatsRoutine() {
	ticker := time.NewTicker(p.opts.StatsInterval)
	go func() {
		defer close(p.statsDone)
		for {
			select {
			case <-ticker.C:
				p.report()
			case <-p.statsStop:
				ticker.Stop()
				return
			}
		}
	}()
}

func (p *Pool) report() {
	s := p.db.Stats()
	slog.Debug("Connection pool stats",
		"database", p.opts.Name,
		"open", s.OpenConnections,
		"in_use", s.InUse,
		"idle", s.Idle,
		"wait_count", s.WaitCount)
	if p.opts.OnStats != nil {
		p.opts.OnStats(p.opts.Name, s)
	}
}

// Stats returns the current pool statistics.
func (p *Pool) Stats() sql.DBStats { return p.db.Stats() }

func (p *Pool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, query, args...)
}

func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p *Pool) PingContext(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close stops the stats routine and drains the pool. Safe to call twice.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.statsStop)
		<-p.statsDone
		err = p.db.Close()
		p.report()
	})
	return err
}
