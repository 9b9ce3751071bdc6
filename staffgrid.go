// Package staffgrid serves a read-only, filterable, paginated directory of
// personnel records from a precomputed view.
package staffgrid

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// ErrFetchFailed is returned for any backing-store failure. Its message is
// the only error text a caller ever sees.
var ErrFetchFailed = errors.New("failed to fetch personnel records")

// Querier executes parameterized statements. *sql.DB and *pool.Pool satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Page is one page of records plus its paging metadata.
type Page struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Handler answers directory requests
type Handler struct {
	DB     Querier
	Logger *slog.Logger
}

func NewHandler(db Querier, logger *slog.Logger) *Handler {
	return &Handler{
		DB:     db,
		Logger: logger,
	}
}

type loggerKey struct{}

// WithLogger attaches a request-scoped logger that Handler prefers over its own.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (h *Handler) logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.ParseParams(r)
	page, err := h.FetchData(ctx, params)
	if err != nil {
		h.logger(ctx).ErrorContext(ctx, "fetch personnel records",
			"query", params.Values().Encode(),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": ErrFetchFailed.Error()})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ParseParams extracts filters, sort and paging from the request's query string.
func (h *Handler) ParseParams(r *http.Request) Params {
	return ParseParams(r.URL.Query())
}

// FetchData runs the count and data statements for p concurrently. Either
// both succeed or ErrFetchFailed is returned; there is no partial page.
func (h *Handler) FetchData(ctx context.Context, p Params) (*Page, error) {
	q := BuildQuery(p)

	var (
		total   int
		records []Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.DB.QueryRowContext(gctx, q.Count, q.CountArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := h.DB.QueryContext(gctx, q.Data, q.DataArgs...)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		defer rows.Close()

		recs, err := scanRecords(rows)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		records = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	return &Page{
		Data:       records,
		Pagination: NewPagination(p.Page, p.PageSize, total),
	}, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
