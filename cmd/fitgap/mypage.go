package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mypageCmd)
	mypageCmd.AddCommand(mypageNicknameCmd)
}

var mypageCmd = &cobra.Command{
	Use:   "mypage",
	Short: "Show your account, résumé and postings",
	Long: `Show your account with the latest analysis signal of every résumé and posting.

Examples:
  fitgap mypage
  fitgap mypage --json`,
	RunE: runMyPage,
}

var mypageNicknameCmd = &cobra.Command{
	Use:   "nickname <name>",
	Short: "Change your nickname",
	Args:  cobra.ExactArgs(1),
	RunE:  runMyPageNickname,
}

func runMyPage(cmd *cobra.Command, args []string) error {
	page := app.MyPagePage()
	defer page.Unmount()
	if err := page.Load(cmd.Context()); err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	snap := page.Snapshot()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), snap)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	u := snap.Summary.User
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	fmt.Fprintf(w, "EMAIL:\t%s\n", u.Email)
	fmt.Fprintf(w, "NICKNAME:\t%s\n", u.Nickname)
	fmt.Fprintf(w, "ROLE:\t%s\n", u.Role)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(snap.Summary.Resumes) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RESUME\tCREATED\tSIGNAL")
		for i, r := range snap.Summary.Resumes {
			label := "-"
			if i == 0 && snap.ResumeSignal != "" {
				label = snap.ResumeSignal.Label()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.CreatedAt, label)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if len(snap.Summary.Postings) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		return writePostings(cmd, snap.Summary.Postings, snap.PostingSignals)
	}
	return nil
}

func runMyPageNickname(cmd *cobra.Command, args []string) error {
	page := app.MyPagePage()
	defer page.Unmount()
	if err := page.SaveNickname(cmd.Context(), args[0]); err != nil {
		return bannerError(page.Banner.Message(), err)
	}
	nickname := page.Snapshot().Summary.User.Nickname
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"nickname": nickname})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Nickname changed to %s\n", nickname)
	return nil
}

// bannerError prefers the message a view showed inline over the raw error.
func bannerError(banner string, err error) error {
	if banner != "" {
		return errors.New(banner)
	}
	return err
}
