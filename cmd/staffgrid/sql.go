package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnemet/staffgrid"
)

var sqlCmd = &cobra.Command{
	Use:   "sql [query-string]",
	Short: "Print the statements a query string maps to",
	Long: `Print the data and count statements, with their bound arguments, that the
API would run for the given query string, e.g. "nome=ana&sortBy=cargo&page=2".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 1 {
			raw = strings.TrimPrefix(args[0], "?")
		}
		q, err := url.ParseQuery(raw)
		if err != nil {
			return fmt.Errorf("parse query string: %w", err)
		}

		p := staffgrid.ParseParams(q)
		built := staffgrid.BuildQuery(p)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "-- normalized: %s\n", p.Values().Encode())
		fmt.Fprintf(out, "%s;\n", built.Data)
		printArgs(cmd, built.DataArgs)
		fmt.Fprintf(out, "%s;\n", built.Count)
		printArgs(cmd, built.CountArgs)
		return nil
	},
}

func printArgs(cmd *cobra.Command, args []interface{}) {
	for i, a := range args {
		fmt.Fprintf(cmd.OutOrStdout(), "--   $%d = %#v\n", i+1, a)
	}
}
