package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/finflow/internal/auth"
	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/spf13/cobra"
)

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Example: `  finflow signup --name "Asha Rao" --email asha@example.com
  finflow signup   # prompts for everything`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			name, err := a.stringFlagOrAsk(ctx, cmd, "name", "Name")
			if err != nil {
				return err
			}
			email, err := a.stringFlagOrAsk(ctx, cmd, "email", "Email")
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				if password, err = a.askPassword(ctx, "Password"); err != nil {
					return err
				}
			}

			err = a.session.Signup(ctx, name, email, password)
			if errors.Is(err, auth.ErrSessionNotSaved) {
				return common.NewUserError("Your account was created but you are not signed in; run 'finflow login'", err)
			}
			if err != nil {
				return err
			}

			user, _ := a.session.CurrentUser()
			a.println(cli.FormatSuccess(fmt.Sprintf("Welcome to FinFlow, %s!", user.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "Your name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")

	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			email, err := a.stringFlagOrAsk(ctx, cmd, "email", "Email")
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				if password, err = a.askPassword(ctx, "Password"); err != nil {
					return err
				}
			}

			if err := a.session.Login(ctx, email, password); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return common.NewUserError("Login failed", err)
				}
				return err
			}

			user, _ := a.session.CurrentUser()
			a.println(cli.FormatSuccess(fmt.Sprintf("Signed in as %s <%s>", user.Name, user.Email)))
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				a.println(cli.FormatInfo("You are not signed in."))
				return nil
			}
			if err := a.session.Logout(); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			a.println(cli.FormatSuccess("Signed out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.requireUser()
			if err != nil {
				return err
			}

			a.println(cli.RenderKeyValues([][2]string{
				{"Name", user.Name},
				{"Email", user.Email},
				{"Currency", string(user.Currency())},
				{"Member since", user.CreatedAt.Format("January 2, 2006")},
			}))
			return nil
		},
	}
}
