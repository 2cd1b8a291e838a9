package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/config"
	"github.com/semmy-space/bazaar/internal/output"
	"github.com/semmy-space/bazaar/internal/session"
)

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	Username      string `help:"Account username (prompted if omitted)" short:"u"`
	PasswordStdin bool   `help:"Read the password from stdin" name:"password-stdin"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	return cmd.run(ctx, newPrompter(fp, globals), fp, globals, sp)
}

func (cmd *AuthLoginCmd) run(ctx context.Context, p *prompter, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	username := cmd.Username
	if username == "" && !cmd.PasswordStdin {
		var err error
		if username, err = p.Line("Username: "); err != nil {
			return err
		}
	}

	var password string
	var err error
	if cmd.PasswordStdin {
		password, err = readSecretFrom(fp.In)
	} else {
		password, err = p.Secret("Password: ")
	}
	if err != nil {
		return err
	}

	if username == "" || password == "" {
		return output.NewCLIError(output.ExitUsage, "Please enter both username and password")
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would POST /accounts/login/ as %s\n", username)
		return nil
	}

	svc, err := sp.API()
	if err != nil {
		return err
	}
	sess, _, err := sp.Session()
	if err != nil {
		return err
	}

	pair, err := svc.Login(ctx, username, password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return output.NewCLIError(output.ExitAuth, "Login failed: invalid username or password")
		}
		return output.FromError("Login failed", err)
	}

	sess.Start(session.Credential{Access: pair.Access, Refresh: pair.Refresh})
	if _, ok := sess.Current(); !ok {
		return output.NewCLIError(output.ExitGeneral, "Logged in, but the session could not be stored").
			WithHint("Check the credential store: bazaar auth status")
	}

	_, backend, _ := sp.Store()
	fp.Formatter.PrintSuccess(fmt.Sprintf("Logged in as %s", username))
	fmt.Fprintf(fp.Err, "Credentials stored in %s\n", describeBackend(backend))
	return nil
}

// AuthRegisterCmd implements the auth register command
type AuthRegisterCmd struct {
	Username      string `help:"Username (prompted if omitted)" short:"u"`
	Email         string `help:"Email address (prompted if omitted)" short:"e"`
	PasswordStdin bool   `help:"Read the password from stdin (used for both password fields)" name:"password-stdin"`
}

// Run executes the register command
func (cmd *AuthRegisterCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	p := newPrompter(fp, globals)
	reg := api.Registration{Username: cmd.Username, Email: cmd.Email}

	var err error
	if reg.Username == "" && !cmd.PasswordStdin {
		if reg.Username, err = p.Line("Username: "); err != nil {
			return err
		}
	}
	if reg.Email == "" && !cmd.PasswordStdin {
		if reg.Email, err = p.Line("Email: "); err != nil {
			return err
		}
	}

	if cmd.PasswordStdin {
		if reg.Password, err = readSecretFrom(fp.In); err != nil {
			return err
		}
		reg.Password2 = reg.Password
	} else {
		if reg.Password, err = p.Secret("Password: "); err != nil {
			return err
		}
		if reg.Password2, err = p.Secret("Confirm password: "); err != nil {
			return err
		}
	}

	if err := validateRegistration(reg); err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would POST /accounts/register/ for %s <%s>\n", reg.Username, reg.Email)
		return nil
	}

	svc, err := sp.API()
	if err != nil {
		return err
	}

	acct, err := svc.Register(ctx, reg)
	if err != nil {
		return output.FromError("Registration failed", err)
	}

	fp.Formatter.PrintSuccess(fmt.Sprintf("Account created for %s", acct.Username))
	fmt.Fprintf(fp.Err, "Run: %s\n", loginCommand)
	return nil
}

func validateRegistration(reg api.Registration) error {
	if reg.Username == "" || reg.Email == "" || reg.Password == "" || reg.Password2 == "" {
		return output.NewCLIError(output.ExitUsage, "Please fill in all fields: username, email, password")
	}
	if reg.Password != reg.Password2 {
		return output.NewCLIError(output.ExitUsage, "Passwords do not match")
	}
	return nil
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct{}

// Run executes the logout command. Logging out without a session is not an error.
func (cmd *AuthLogoutCmd) Run(fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would remove the stored session\n")
		return nil
	}

	sess, _, err := sp.Session()
	if err != nil {
		return err
	}

	_, had := sess.Current()
	sess.End()
	if _, still := sess.Current(); still {
		return output.NewCLIError(output.ExitGeneral, "Failed to remove stored credentials").
			WithHint("Check the credential store: bazaar auth status")
	}

	if had {
		fp.Formatter.PrintSuccess("Logged out")
	} else {
		fmt.Fprintf(fp.Err, "No active session\n")
	}
	return nil
}

// AuthStatusCmd implements the auth status command
type AuthStatusCmd struct{}

type authStatus struct {
	LoggedIn   bool   `json:"logged_in" label:"-"`
	Status     string `json:"status" label:"Status"`
	Store      string `json:"store" label:"Store"`
	BaseURL    string `json:"base_url" label:"Backend"`
	Subject    string `json:"subject,omitempty" label:"Subject"`
	UserID     string `json:"user_id,omitempty" label:"User ID"`
	IssuedAt   string `json:"issued_at,omitempty" label:"Issued"`
	ExpiresAt  string `json:"expires_at,omitempty" label:"Expires"`
	HasRefresh bool   `json:"has_refresh" label:"-"`
	Token      string `json:"-" label:"Token"`
}

// Run executes the status command
func (cmd *AuthStatusCmd) Run(cfg *config.Config, fp *FormatterProvider, sp *ServiceProvider) error {
	sess, _, err := sp.Session()
	if err != nil {
		return err
	}
	_, backend, _ := sp.Store()

	st := sessionStatus(sess, time.Now())
	st.Store = describeBackend(backend)
	st.BaseURL = sp.cfg.BaseURLOrDefault()

	if err := fp.Formatter.Print(st); err != nil {
		return err
	}
	if !st.LoggedIn {
		if NeedsSetup(cfg) {
			PrintSetupHint(fp.Err)
		} else {
			fmt.Fprintf(fp.Err, "Run: %s\n", loginCommand)
		}
	}
	return nil
}

// sessionStatus describes the current session. Token claims are
// informational only: an expired-looking token still counts as a session
// until the backend rejects it.
func sessionStatus(sess *session.Session, now time.Time) authStatus {
	st := authStatus{Status: "not logged in"}

	cred, ok := sess.Current()
	if !ok {
		return st
	}

	st.LoggedIn = true
	st.Status = "logged in"
	st.HasRefresh = cred.Refresh != ""
	st.Token = maskSecret(cred.Access)

	claims, err := cred.Claims()
	if err != nil {
		return st
	}
	st.Subject = claims.Subject
	st.UserID = claims.UserID
	if !claims.IssuedAt.IsZero() {
		st.IssuedAt = claims.IssuedAt.Format(time.RFC3339)
	}
	if !claims.ExpiresAt.IsZero() {
		st.ExpiresAt = claims.ExpiresAt.Format(time.RFC3339)
		if claims.Expired(now) {
			st.Status = "logged in (token looks expired; the backend decides)"
		}
	}
	return st
}
