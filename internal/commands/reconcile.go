package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored account balances with posted history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := a.openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			discrepancies, err := svc.Ledger.ReconcileBalances(cmd.Context())
			if err != nil {
				return fmt.Errorf("reconciling balances: %w", err)
			}
			if len(discrepancies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "balances consistent")
				return nil
			}
			for _, d := range discrepancies {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tstored=%s\treplayed=%s\n",
					d.AccountCode, d.StoredBalance.String(), d.ReplayedBalance.String())
			}
			return fmt.Errorf("%d account balance(s) differ from posted history", len(discrepancies))
		},
	}
}
