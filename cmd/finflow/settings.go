package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/finflow/internal/auth"
	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update your profile, password and preferred currency",
	}

	cmd.AddCommand(profileCmd())
	cmd.AddCommand(passwordCmd())
	cmd.AddCommand(currencySettingCmd())

	return cmd
}

func profileCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your name or email",
		Example: `  finflow settings profile --name "Asha R."
  finflow settings profile --email asha@newmail.com`,
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

			if name == "" && email == "" {
				return common.NewUserError("Nothing to change; pass --name or --email", common.ErrInvalidInput)
			}
			if name == "" {
				name = user.Name
			}
			if email == "" {
				email = user.Email
			}

			if err := a.session.UpdateProfile(cmd.Context(), name, email); err != nil {
				return err
			}
			a.println(cli.FormatSuccess(fmt.Sprintf("Profile updated: %s <%s>", name, email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email address")

	return cmd
}

func passwordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			ctx := cmd.Context()
			current, err := a.askPassword(ctx, "Current password")
			if err != nil {
				return err
			}
			next, err := a.askPassword(ctx, "New password")
			if err != nil {
				return err
			}
			confirm, err := a.askPassword(ctx, "Confirm new password")
			if err != nil {
				return err
			}

			if err := a.session.ChangePassword(ctx, current, next, confirm); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return common.NewUserError("Current password is incorrect", err)
				}
				return err
			}
			a.println(cli.FormatSuccess("Password changed"))
			return nil
		},
	}
}

func currencySettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currency <code>",
		Short: "Set the currency reports are shown in",
		Example: `  finflow settings currency INR`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := currency.Parse(args[0])
			if err != nil {
				return common.NewUserError("Supported currencies are "+supportedCodes(), err)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}
			if err := a.session.SetDefaultCurrency(cmd.Context(), code); err != nil {
				return err
			}
			a.println(cli.FormatSuccess("Reports will be shown in " + string(code)))
			return nil
		},
	}
}
