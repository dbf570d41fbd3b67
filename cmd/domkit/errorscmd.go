package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-go/domkit/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `Without arguments, list every error code domkit reports. With a code,
print its category, explanation and documentation link.

Examples:
  domkit errors
  domkit errors E142`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					t, _ := errors.GetTemplate(code)
					fmt.Fprintf(out, "%s  %-8s  %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run 'domkit errors' for the list of codes")
			}
			fmt.Fprintf(out, "%s: %s\n", code, t.Message)
			fmt.Fprintf(out, "  Category: %s\n", t.Category)
			if t.Detail != "" {
				fmt.Fprintf(out, "  %s\n", t.Detail)
			}
			if t.DocURL != "" {
				fmt.Fprintf(out, "  Learn more: %s\n", t.DocURL)
			}
			return nil
		},
	}
}
