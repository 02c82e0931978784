package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/guard"
	"github.com/spf13/cobra"
)

var roleOptions = []string{string(techhatch.RoleCandidate), string(techhatch.RoleRecruiter)}

func challengeText(ch *techhatch.Challenge) string {
	if ch.Message != "" {
		return ch.Message
	}
	return "A one-time code was sent to " + ch.Email
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password, otp string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email, password and a one-time code",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			ctx := cmd.Context()
			if sess, ok := c.Session(); ok {
				return fmt.Errorf("already signed in as %s; run logout first", sess.Email)
			}

			var err error
			if email, err = a.ask(email, "Email", "you@example.com", false); err != nil {
				return err
			}
			if password, err = a.ask(password, "Password", "", true); err != nil {
				return err
			}
			ch, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), challengeText(ch))

			if otp, err = a.ask(otp, "One-time code", "6 digits", false); err != nil {
				return err
			}
			res, err := c.VerifyLoginOTP(ctx, ch.Email, otp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s). Dashboard: %s\n",
				res.Email, strings.ToLower(string(res.Role)), guard.Dashboard(res.Role))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code, if already known")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, role, otp string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a candidate or recruiter account",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			ctx := cmd.Context()
			var err error
			if email, err = a.ask(email, "Email", "you@example.com", false); err != nil {
				return err
			}
			if password, err = a.ask(password, "Password", "", true); err != nil {
				return err
			}
			if role, err = a.choose(strings.ToUpper(role), "Account type", roleOptions); err != nil {
				return err
			}

			ch, err := c.Register(ctx, email, password, techhatch.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), challengeText(ch))

			if otp, err = a.ask(otp, "One-time code", "6 digits", false); err != nil {
				return err
			}
			res, err := c.VerifyRegistrationOTP(ctx, ch.Email, otp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %s. Run \"techhatch login\" to sign in.\n",
				res.Email, strings.ToLower(res.Role))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "", "candidate or recruiter")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code, if already known")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var email, otp string
	cmd := &cobra.Command{
		Use:       "verify login|registration",
		Short:     "Submit a one-time code received after login or register",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"login", "registration"},
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, args []string) error {
			ctx := cmd.Context()
			var err error
			if email, err = a.ask(email, "Email", "you@example.com", false); err != nil {
				return err
			}
			if otp, err = a.ask(otp, "One-time code", "6 digits", false); err != nil {
				return err
			}

			switch techhatch.OTPPurpose(strings.ToUpper(args[0])) {
			case techhatch.PurposeLogin:
				res, err := c.VerifyLoginOTP(ctx, email, otp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s. Dashboard: %s\n", res.Email, guard.Dashboard(res.Role))
			case techhatch.PurposeRegistration:
				res, err := c.VerifyRegistrationOTP(ctx, email, otp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s.\n", res.Email)
			default:
				return fmt.Errorf("unknown purpose %q", args[0])
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code")
	return cmd
}

func newResendCmd(a *app) *cobra.Command {
	var email, purpose string
	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Ask for a new one-time code",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			var err error
			if email, err = a.ask(email, "Email", "you@example.com", false); err != nil {
				return err
			}
			ch, err := c.ResendOTP(cmd.Context(), email, techhatch.OTPPurpose(purpose))
			var cd *techhatch.CooldownError
			if errors.As(err, &cd) {
				return fmt.Errorf("wait %s before requesting another code", cd.Remaining.Round(time.Second))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), challengeText(ch))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&purpose, "purpose", "login", "login or registration")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			if _, ok := c.Session(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			c.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: a.withClient(func(cmd *cobra.Command, c *techhatch.Client, _ []string) error {
			out := cmd.OutOrStdout()
			sess, ok := c.Session()
			if !ok {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(out, "Email:    %s\n", sess.Email)
			fmt.Fprintf(out, "Role:     %s\n", sess.Role)
			fmt.Fprintf(out, "Expires:  %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))

			user, err := c.CurrentUser(cmd.Context())
			if err != nil {
				if errors.Is(err, techhatch.ErrUnauthorized) {
					fmt.Fprintln(out, "The server rejected the credential; signed out.")
					return nil
				}
				fmt.Fprintf(out, "Account:  unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "Account:  %s, %s\n", user.AccountStatus, user.VerificationStatus)
			return nil
		}),
	}
}
