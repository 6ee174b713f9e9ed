package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jobtrack/display"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/tracker"
)

// RegisterCmd creates an account
var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account on the job tracker service.

Examples:
  jobtrack register --name Ada --email ada@example.com
  jobtrack register --name Ada --email ada@example.com --password s3cret`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

// LoginCmd stores a session token
var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Long: `Log in with email and password. The access token is kept in local
storage and sent with every later command until 'jobtrack logout'.

Examples:
  jobtrack login --email ada@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// LogoutCmd ends the session
var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// WhoamiCmd prints the logged-in user
var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	authName     string
	authEmail    string
	authPassword string
)

func init() {
	for _, c := range []*cobra.Command{RegisterCmd, LoginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "password (prompted when omitted)")
	}
	RegisterCmd.Flags().StringVar(&authName, "name", "", "display name")
}

// Credentials are the inputs of login and registration.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// promptMissing asks for any empty credential on a terminal.
func promptMissing(creds *Credentials, withName bool) error {
	if withName && creds.Name == "" {
		name, err := pterm.DefaultInteractiveTextInput.Show("Name")
		if err != nil {
			return errors.Wrap(err, "read name")
		}
		creds.Name = strings.TrimSpace(name)
	}
	if creds.Email == "" {
		email, err := pterm.DefaultInteractiveTextInput.Show("Email")
		if err != nil {
			return errors.Wrap(err, "read email")
		}
		creds.Email = strings.TrimSpace(email)
	}
	if creds.Password == "" {
		password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return errors.Wrap(err, "read password")
		}
		creds.Password = password
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	creds := Credentials{Name: authName, Email: authEmail, Password: authPassword}
	if err := promptMissing(&creds, true); err != nil {
		return err
	}

	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return Register(cmd.Context(), app, cmd.OutOrStdout(), creds, display.ShouldOutputJSON(cmd))
}

// Register runs the registration flow and reports the result on w.
func Register(ctx context.Context, app *App, w io.Writer, creds Credentials, asJSON bool) error {
	msg, err := app.Tracker.Register(ctx, creds.Name, creds.Email, creds.Password)
	if err != nil {
		return err
	}
	if asJSON {
		return display.OutputJSON(w, map[string]string{"message": msg})
	}
	if msg == "" {
		msg = "Registered"
	}
	fmt.Fprintln(w, pterm.Green(msg))
	fmt.Fprintln(w, "Next: jobtrack login --email "+creds.Email)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds := Credentials{Email: authEmail, Password: authPassword}
	if err := promptMissing(&creds, false); err != nil {
		return err
	}

	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return Login(cmd.Context(), app, cmd.OutOrStdout(), creds, display.ShouldOutputJSON(cmd))
}

// Login runs the login flow and reports the result on w.
func Login(ctx context.Context, app *App, w io.Writer, creds Credentials, asJSON bool) error {
	sess, err := app.Tracker.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return err
	}
	if asJSON {
		return display.OutputJSON(w, map[string]string{"message": tracker.MsgLoginSuccessful, "user_name": sess.UserName})
	}
	fmt.Fprintln(w, pterm.Green(tracker.MsgLoginSuccessful))
	if sess.UserName != "" {
		fmt.Fprintf(w, "Welcome, %s\n", sess.UserName)
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return Logout(cmd.Context(), app, cmd.OutOrStdout())
}

// Logout ends the session.
func Logout(ctx context.Context, app *App, w io.Writer) error {
	if err := app.Tracker.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return Whoami(cmd.Context(), app, cmd.OutOrStdout(), display.ShouldOutputJSON(cmd))
}

// Whoami prints the stored user name, or fails when logged out.
func Whoami(ctx context.Context, app *App, w io.Writer, asJSON bool) error {
	sess, err := app.Sessions.Require(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return display.OutputJSON(w, sess)
	}
	fmt.Fprintln(w, sess.UserName)
	return nil
}
