package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fitgap-client/internal/extract"
	"fitgap-client/internal/mypage"
	"fitgap-client/internal/postings"
	"fitgap-client/internal/signals"
)

var (
	postingCompany string
	postingText    string
	postingFile    string
)

func init() {
	rootCmd.AddCommand(postingsCmd)
	postingsCmd.AddCommand(postingsListCmd)
	postingsCmd.AddCommand(postingsCreateCmd)

	postingsCreateCmd.Flags().StringVar(&postingCompany, "company", "", "Company name shown with the posting")
	postingsCreateCmd.Flags().StringVar(&postingText, "text", "", "Posting text")
	postingsCreateCmd.Flags().StringVar(&postingFile, "file", "", "Read the posting from a PDF, DOCX or text file")
	postingsCreateCmd.MarkFlagsMutuallyExclusive("file", "text")
	postingsCreateCmd.MarkFlagsOneRequired("file", "text")
}

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Manage job postings (company accounts)",
	Long: `Manage the job postings of a company account. An account holds at most
three postings.

Examples:
  fitgap postings list
  fitgap postings create --company "Acme" --file ./backend-engineer.docx`,
}

var postingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List postings with their latest signal",
	RunE:  runPostingsList,
}

var postingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a posting and pair it with the last saved résumé",
	RunE:  runPostingsCreate,
}

func loadPostingPage(cmd *cobra.Command) (*postings.Page, error) {
	page := app.PostingPage()
	if err := page.Load(cmd.Context()); err != nil {
		page.Unmount()
		return nil, bannerError(page.Banner.Message(), err)
	}
	return page, nil
}

type postingRow struct {
	mypage.Posting
	Signal signals.Signal `json:"signal,omitempty"`
}

func runPostingsList(cmd *cobra.Command, args []string) error {
	page, err := loadPostingPage(cmd)
	if err != nil {
		return err
	}
	defer page.Unmount()

	if jsonOutput {
		sigs := page.Signals()
		rows := make([]postingRow, 0, len(page.Postings()))
		for _, p := range page.Postings() {
			sig, _ := sigs.Get(mypage.PostingID(p))
			rows = append(rows, postingRow{Posting: p, Signal: sig})
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{"postings": rows, "remaining": page.Remaining()})
	}
	if len(page.Postings()) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No postings yet.")
		return nil
	}
	if err := writePostings(cmd, page.Postings(), page.Signals()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d more posting(s) allowed.\n", page.Remaining())
	return nil
}

func writePostings(cmd *cobra.Command, list []mypage.Posting, sigs signals.Map) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POSTING\tCOMPANY\tCREATED\tSIGNAL")
	for _, p := range list {
		sig, _ := sigs.Get(mypage.PostingID(p))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.CompanyName, p.CreatedAt, sig.Label())
	}
	return w.Flush()
}

func runPostingsCreate(cmd *cobra.Command, args []string) error {
	text := postingText
	if postingFile != "" {
		extracted, err := extract.FromFile(cmd.Context(), postingFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", postingFile, err)
		}
		text = extracted
	}

	page, err := loadPostingPage(cmd)
	if err != nil {
		return err
	}
	defer page.Unmount()

	res, err := page.Create(cmd.Context(), postings.CreateRequest{CompanyName: postingCompany, RawText: text})
	if err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"posting":     res.Posting,
			"analysis_id": res.Pairing.AnalysisID,
			"signal":      res.Pairing.Signal,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Posting created (id %s).\n", res.Posting.ID)
	switch {
	case res.Pairing.Paired():
		fmt.Fprintf(out, "Analysis created. View it with: fitgap analysis show %s\n", res.Pairing.AnalysisID)
	case res.Pairing.HasSignal:
		fmt.Fprintf(out, "Signal: %s\n", res.Pairing.Signal.Label())
	case res.Pairing.Err != nil:
		fmt.Fprintln(out, "The posting was saved but no analysis could be started yet.")
	}
	return nil
}
