package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitgap-client/internal/report"
)

var analysisExport bool

func init() {
	rootCmd.AddCommand(analysisCmd)
	analysisCmd.AddCommand(analysisShowCmd)

	analysisShowCmd.Flags().BoolVar(&analysisExport, "export", false, "Also store the report in the configured export store")
}

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Inspect analysis results",
}

var analysisShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show the fit score, signal and items of an analysis",
	Long: `Show the fit score, signal and items of an analysis.

Examples:
  fitgap analysis show 9
  fitgap analysis show 9 --export

Exports go to FITGAP_EXPORT_DIR, or to S3_BUCKET when FITGAP_EXPORT_STORE=s3.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalysisShow,
}

func runAnalysisShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	page := app.AnalysisPage()
	defer page.Unmount()
	if err := page.Load(ctx, args[0]); err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	sess, _ := page.Session()

	var location string
	if analysisExport {
		exporter, err := app.Exporter(ctx)
		if err != nil {
			return fmt.Errorf("export store: %w", err)
		}
		snap, err := app.Session.Current(ctx)
		if err != nil {
			return err
		}
		obj, err := exporter.Export(ctx, snap.User.ID, sess)
		if err != nil {
			return err
		}
		location = obj.Location
	}

	if jsonOutput {
		payload := map[string]any{"analysis": sess}
		if location != "" {
			payload["export"] = location
		}
		return printJSON(cmd.OutOrStdout(), payload)
	}
	fmt.Fprint(cmd.OutOrStdout(), report.NewSanitizer().Markdown(sess))
	if location != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", location)
	}
	return nil
}
