// Command fitgap is the terminal client for the fit-gap matching service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fitgap-client/internal/bootstrap"
	"fitgap-client/internal/shared/config"
)

var (
	app        *bootstrap.App
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fitgap",
	Short: "Compare résumés with job postings from the terminal",
	Long: `fitgap signs you in to the fit-gap service and manages the résumé or
postings of your account. Each résumé/posting pair gets an analysis with a
fit score and a traffic-light signal.

Run "fitgap login" first, then "fitgap status" to see where you are.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		built, err := bootstrap.Build(cmd.Context(), config.Load(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		app = built
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cobra.OnFinalize(closeApp)
}

// closeApp runs after every command, failed ones included.
func closeApp() {
	if app != nil {
		app.Close()
		app = nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
