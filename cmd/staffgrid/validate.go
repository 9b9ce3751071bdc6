package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnemet/staffgrid/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config.yaml ...]",
	Short: "Check configuration files against the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{configPath}
		}
		expand, _ := cmd.Flags().GetBool("expand-env")

		out := cmd.OutOrStdout()
		allValid := true
		for _, path := range args {
			name := filepath.Base(path)
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(out, "❌ %s: %v\n", name, err)
				allValid = false
				continue
			}
			if expand {
				data = []byte(os.ExpandEnv(string(data)))
			}

			err = config.Validate(data)
			var verr *config.ValidationError
			switch {
			case err == nil:
				fmt.Fprintf(out, "✅ %s is valid.\n", name)
			case errors.As(err, &verr):
				fmt.Fprintf(out, "❌ %s is invalid!\n", name)
				for _, desc := range verr.Errors {
					fmt.Fprintf(out, "   - %s\n", desc)
				}
				allValid = false
			default:
				fmt.Fprintf(out, "❌ Error validating %s: %v\n", name, err)
				allValid = false
			}
		}

		if !allValid {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("expand-env", false, "expand ${VAR} references before validating")
}
