package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/export"
)

func newTrialBalanceCommand(a *app) *cobra.Command {
	var asOf string
	var out string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Export the trial balance as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var date time.Time
			if asOf != "" {
				parsed, err := time.Parse(time.DateOnly, asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q, want YYYY-MM-DD", asOf)
				}
				date = parsed
			}

			svc, cfg, closeFn, err := a.openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if date.IsZero() {
				date = domain.LocalDate(time.Now(), cfg.ReportLocation)
			}

			tb, err := svc.Reporting.TrialBalance(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("building trial balance: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := export.WriteTrialBalanceCSV(w, tb); err != nil {
				return fmt.Errorf("writing CSV: %w", err)
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			}
			if !tb.IsBalanced {
				return errors.New(tb.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "trial balance date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&out, "out", "", "write CSV to this file instead of stdout")

	return cmd
}
