package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fitgap-client/internal/extract"
	"fitgap-client/internal/resumes"
)

var (
	resumeFile    string
	resumeText    string
	resumeReplace bool
)

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.AddCommand(resumeSaveCmd)
	resumeCmd.AddCommand(resumeDeleteCmd)
	resumeCmd.AddCommand(resumeAnalyzeCmd)

	resumeSaveCmd.Flags().StringVar(&resumeFile, "file", "", "Read the résumé from a PDF, DOCX or text file")
	resumeSaveCmd.Flags().StringVar(&resumeText, "text", "", "Résumé text")
	resumeSaveCmd.Flags().BoolVar(&resumeReplace, "replace", false, "Overwrite the existing résumé")
	resumeSaveCmd.MarkFlagsMutuallyExclusive("file", "text")
	resumeSaveCmd.MarkFlagsOneRequired("file", "text")
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage your résumé (jobseeker accounts)",
	Long: `Manage the single résumé of a jobseeker account.

Examples:
  # Save a résumé from a PDF
  fitgap resume save --file ./cv.pdf

  # Overwrite it with new text
  fitgap resume save --replace --text "Go developer, 5 years"

  # Compare the résumé with the postings available to you
  fitgap resume analyze`,
}

var resumeSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save or replace your résumé",
	RunE:  runResumeSave,
}

var resumeDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your résumé",
	RunE:  runResumeDelete,
}

var resumeAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Request an analysis of your résumé",
	RunE:  runResumeAnalyze,
}

func loadResumePage(cmd *cobra.Command) (*resumes.Page, error) {
	page := app.ResumePage()
	if err := page.Load(cmd.Context()); err != nil {
		page.Unmount()
		return nil, bannerError(page.Banner.Message(), err)
	}
	return page, nil
}

func runResumeSave(cmd *cobra.Command, args []string) error {
	text := resumeText
	if resumeFile != "" {
		extracted, err := extract.FromFile(cmd.Context(), resumeFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", resumeFile, err)
		}
		text = extracted
	}

	page, err := loadResumePage(cmd)
	if err != nil {
		return err
	}
	defer page.Unmount()

	var id string
	if resumeReplace {
		id, err = page.Replace(cmd.Context(), text)
	} else {
		id, err = page.Create(cmd.Context(), text)
	}
	if err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"resume_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Résumé saved (id %s). Run \"fitgap resume analyze\" to compare it.\n", id)
	return nil
}

func runResumeDelete(cmd *cobra.Command, args []string) error {
	page, err := loadResumePage(cmd)
	if err != nil {
		return err
	}
	defer page.Unmount()

	if err := page.Delete(cmd.Context()); err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Résumé deleted.")
	return nil
}

func runResumeAnalyze(cmd *cobra.Command, args []string) error {
	page, err := loadResumePage(cmd)
	if err != nil {
		return err
	}
	defer page.Unmount()

	id, err := page.Analyze(cmd.Context())
	if err != nil {
		if errors.Is(err, resumes.ErrNoResume) {
			return err
		}
		return bannerError(page.Banner.Message(), err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"analysis_id": id})
	}
	if id == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No posting to compare with yet.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Analysis created. View it with: fitgap analysis show %s\n", id)
	return nil
}
