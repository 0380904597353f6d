package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fitgap-client/internal/account"
)

var accountConfirm bool

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountDeleteCmd)

	accountDeleteCmd.Flags().BoolVar(&accountConfirm, "yes", false, "Confirm the deletion")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your account",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account and sign out",
	Long: `Delete your account on the server. Stored tokens are removed only after
the server confirmed the deletion.

Examples:
  fitgap account delete --yes`,
	RunE: runAccountDelete,
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	svc := app.AccountService()
	err := svc.Delete(cmd.Context(), accountConfirm)
	if errors.Is(err, account.ErrNotConfirmed) {
		return fmt.Errorf("%s (rerun with --yes)", account.ConfirmPrompt)
	}
	if err != nil {
		return bannerError(svc.Banner.Message(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
	return nil
}
