package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnemet/staffgrid"
	"github.com/gnemet/staffgrid/internal/client"
	"github.com/gnemet/staffgrid/view"
)

func defaultURL() string {
	if s := os.Getenv("STAFFGRID_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List personnel records from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		email, _ := cmd.Flags().GetString("email")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		sortBy, _ := cmd.Flags().GetString("sort-by")
		sortDir, _ := cmd.Flags().GetString("sort-dir")
		orderBy, _ := cmd.Flags().GetString("order-by")
		orderDir, _ := cmd.Flags().GetString("order-dir")
		filters, _ := cmd.Flags().GetStringArray("filter")
		detail, _ := cmd.Flags().GetBool("detail")
		showEmpty, _ := cmd.Flags().GetBool("show-empty")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctrl := view.NewController(client.NewHTTPClient(baseURL, token).WithEmail(email), pageSize)

		for _, f := range filters {
			k, v, ok := strings.Cut(f, "=")
			col, known := staffgrid.LookupColumn(k)
			if !ok || !known || !col.Filterable() {
				return fmt.Errorf("invalid filter %q (expected column=value)", f)
			}
			ctrl.SetFilter(col, v)
		}

		serverSort := staffgrid.Sort{Column: staffgrid.DefaultSortColumn, Direction: staffgrid.ParseDirection(sortDir)}
		if sortBy != "" {
			col, ok := staffgrid.LookupColumn(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort column %q", sortBy)
			}
			serverSort.Column = col
		}
		ctrl.SetServerSort(serverSort)

		if orderBy != "" {
			col, ok := staffgrid.LookupColumn(orderBy)
			if !ok {
				return fmt.Errorf("unknown order column %q", orderBy)
			}
			ctrl.SetClientSort(view.SortState{Key: col, Dir: staffgrid.ParseDirection(orderDir)})
		}

		ctx := cmd.Context()
		if _, err := ctrl.Refresh(ctx); err != nil {
			return err
		}
		// Page counts are only known after the first fetch.
		if page > 1 && ctrl.Navigate(func(p *view.Pager) bool { return p.Jump(page) }) {
			if _, err := ctrl.Refresh(ctx); err != nil {
				return err
			}
		}

		rows := ctrl.Rows()
		pg, _ := ctrl.Pagination()
		out := cmd.OutOrStdout()

		switch {
		case asJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(staffgrid.Page{Data: rows, Pagination: pg})
		case detail:
			printDetails(out, rows, showEmpty)
		default:
			printTable(out, rows)
		}
		fmt.Fprintf(out, "\nPage %d of %d (%d records)\n", pg.Page, pg.TotalPages, pg.Total)
		return nil
	},
}

func printTable(out io.Writer, rows []staffgrid.Record) {
	cols := staffgrid.TableColumns()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = strings.ToUpper(c.Label())
	}
	fmt.Fprintln(w, strings.Join(labels, "\t"))

	cells := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			cells[i] = view.Cell(r, c)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func printDetails(out io.Writer, rows []staffgrid.Record, showEmpty bool) {
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintln(out)
		}
		filled, empty := view.DetailFields(r)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, f := range filled {
			fmt.Fprintf(w, "%s:\t%s\n", f.Label, f.Value)
		}
		if showEmpty {
			for _, f := range empty {
				fmt.Fprintf(w, "%s:\t%s\n", f.Label, f.Value)
			}
		} else if len(empty) > 0 {
			fmt.Fprintf(w, "(%d empty fields hidden)\t\n", len(empty))
		}
		w.Flush()
	}
}

func init() {
	listCmd.Flags().String("url", defaultURL(), "server base URL")
	listCmd.Flags().String("token", os.Getenv("STAFFGRID_TOKEN"), "bearer token")
	listCmd.Flags().String("email", os.Getenv("STAFFGRID_EMAIL"), "identity sent in "+client.EmailHeader)
	listCmd.Flags().Int("page", 1, "page to show")
	listCmd.Flags().Int("page-size", staffgrid.DefaultPageSize, "records per page")
	listCmd.Flags().String("sort-by", "", "server sort column (chooses the rows of each page)")
	listCmd.Flags().String("sort-dir", "asc", "server sort direction")
	listCmd.Flags().String("order-by", "", "reorder the fetched page by this column")
	listCmd.Flags().String("order-dir", "desc", "direction for --order-by")
	listCmd.Flags().StringArrayP("filter", "f", nil, "substring filter column=value (repeatable)")
	listCmd.Flags().Bool("detail", false, "print one block per record instead of a table")
	listCmd.Flags().Bool("show-empty", false, "include empty fields in --detail output")
	listCmd.Flags().Bool("json", false, "output as JSON")
}
