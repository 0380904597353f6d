package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fitgap-client/internal/callback"
	"fitgap-client/internal/session"
	"fitgap-client/internal/shared/server"
)

var (
	loginCallbackURL string
	loginTimeout     time.Duration

	onboardRole          string
	onboardJobseekerType string
	onboardNickname      string
	onboardCompany       string
	onboardBizRegNo      string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&loginCallbackURL, "callback-url", "", "Complete login from a redirect URL copied from the browser")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the browser redirect")

	onboardCmd.Flags().StringVar(&onboardRole, "role", "", "Account role: jobseeker or company (required)")
	onboardCmd.Flags().StringVar(&onboardJobseekerType, "type", "", "Jobseeker type: NEW_GRAD, EXPERIENCED or FREELANCER")
	onboardCmd.Flags().StringVar(&onboardNickname, "nickname", "", "Jobseeker nickname")
	onboardCmd.Flags().StringVar(&onboardCompany, "company", "", "Company name")
	onboardCmd.Flags().StringVar(&onboardBizRegNo, "biz-reg-no", "", "Business registration number")
	_ = onboardCmd.MarkFlagRequired("role")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long: `Sign in with Google.

A loopback server receives the identity-provider redirect and exchanges the
id_token for a session. New accounts continue with "fitgap onboard".

Examples:
  # Open the printed URL in a browser and wait for the redirect
  fitgap login

  # Finish a login from a redirect URL
  fitgap login --callback-url 'http://127.0.0.1:3000/login/callback#id_token=...'`,
	RunE: runLogin,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete the profile of a new account",
	Long: `Complete the profile of a new account. The role cannot be changed later.

Examples:
  fitgap onboard --role jobseeker --type NEW_GRAD --nickname jane
  fitgap onboard --role company --company "Acme" --biz-reg-no 123-45-67890`,
	RunE: runOnboard,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget stored tokens",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runStatus,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if loginCallbackURL != "" {
		state, err := app.Session.HandleCallback(ctx, loginCallbackURL)
		if err != nil {
			return err
		}
		return reportLogin(cmd, state)
	}

	authURL, _, err := app.Google.Start()
	if err != nil {
		return fmt.Errorf("start login: %w (set GOOGLE_CLIENT_ID)", err)
	}
	ln, err := net.Listen("tcp", server.Addr(app.Config.CallbackAddr))
	if err != nil {
		return fmt.Errorf("listen for callback: %w", err)
	}

	srv := callback.New(app.Session, app.Google)
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(serveCtx, ln) }()

	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "Open this URL in your browser to sign in:")
	fmt.Fprintln(out, "  "+authURL)

	timer := time.NewTimer(loginTimeout)
	defer timer.Stop()
	select {
	case res := <-srv.Results():
		cancel()
		<-serveErr
		if res.Err != nil {
			return res.Err
		}
		return reportLogin(cmd, res.State)
	case err := <-serveErr:
		if err == nil {
			err = errors.New("callback server stopped")
		}
		return err
	case <-timer.C:
		return errors.New("timed out waiting for the login redirect")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func reportLogin(cmd *cobra.Command, state session.State) error {
	snap, err := app.Session.Current(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), snap)
	}
	switch state {
	case session.StatePendingOnboarding:
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in. Finish your profile with: fitgap onboard")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", displayName(snap), snap.User.Role)
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	form := session.OnboardingForm{
		Role:          session.Role(strings.ToUpper(strings.TrimSpace(onboardRole))),
		JobseekerType: session.JobseekerType(strings.ToUpper(strings.TrimSpace(onboardJobseekerType))),
		Nickname:      onboardNickname,
		CompanyName:   onboardCompany,
		BizRegNo:      onboardBizRegNo,
	}
	if _, err := app.Session.CompleteOnboarding(cmd.Context(), form); err != nil {
		return err
	}
	return reportLogin(cmd, session.StateAuthenticated)
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := app.Session.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	snap, err := app.Session.Current(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), snap)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STATE:\t%s\n", snap.State)
	if snap.State == session.StateAuthenticated {
		fmt.Fprintf(w, "USER:\t%s\n", displayName(snap))
		fmt.Fprintf(w, "ROLE:\t%s\n", snap.User.Role)
	}
	fmt.Fprintf(w, "API:\t%s\n", app.Config.APIBaseURL)
	return w.Flush()
}

func displayName(snap session.Snapshot) string {
	if snap.User.Nickname != "" {
		return snap.User.Nickname
	}
	if snap.User.ID != "" {
		return snap.User.ID
	}
	return "-"
}
