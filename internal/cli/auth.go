// auth.go implements login, signup, logout and whoami.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login [phone]",
	Short: "Log in with your phone number",
	Long: `Log in and store the session for later commands. The password is
read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup [phone]",
	Short: "Create an account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	firstNameFlag string
	lastNameFlag  string
	emailFlag     string
)

func init() {
	signupCmd.Flags().StringVar(&firstNameFlag, "first-name", "", "First name (prompted when empty)")
	signupCmd.Flags().StringVar(&lastNameFlag, "last-name", "", "Last name")
	signupCmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.ctrl.Start(); err != nil {
		return err
	}

	p := newPrompter(cmd)
	phone, err := argOrPrompt(p, args, "Phone number: ")
	if err != nil {
		return err
	}
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}

	sess, err := e.ctrl.Login(cmd.Context(), phone, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.User.DisplayName(), sess.User.PhoneNumber)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.ctrl.Start(); err != nil {
		return err
	}

	p := newPrompter(cmd)
	profile := controller.Profile{FirstName: firstNameFlag, LastName: lastNameFlag, Email: emailFlag}
	if profile.FirstName == "" {
		if profile.FirstName, err = p.Line("First name: "); err != nil {
			return err
		}
	}
	if profile.PhoneNumber, err = argOrPrompt(p, args, "Phone number: "); err != nil {
		return err
	}
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}

	sess, err := e.ctrl.Signup(cmd.Context(), profile, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s (%s)\n", sess.User.DisplayName(), sess.User.PhoneNumber)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	restored, err := e.ctrl.RestoreSession()
	if err != nil {
		return err
	}
	if err := e.ctrl.Logout(); err != nil {
		return err
	}
	if !restored {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	restored, err := e.ctrl.RestoreSession()
	if err != nil {
		return err
	}
	if !restored {
		return errNotLoggedIn
	}

	sess := e.ctrl.Session()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:   %s\n", sess.User.DisplayName())
	fmt.Fprintf(out, "Phone:  %s\n", sess.User.PhoneNumber)
	if sess.User.Email != "" {
		fmt.Fprintf(out, "Email:  %s\n", sess.User.Email)
	}
	fmt.Fprintf(out, "Server: %s\n", e.cfg.API.BaseURL)

	// the API decides whether the token is still accepted; this is display only
	info, err := session.Inspect(sess.AccessToken)
	if err != nil {
		return nil
	}
	if left := info.ExpiresIn(time.Now()); left > 0 {
		fmt.Fprintf(out, "Token:  expires in %s\n", left.Round(time.Minute))
	} else if !info.ExpiresAt.IsZero() {
		fmt.Fprintln(out, "Token:  past its expiry time")
	}
	return nil
}

func argOrPrompt(p *prompter, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return p.Line(prompt)
}
