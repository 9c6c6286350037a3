package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quizmaster-console/internal/domain"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if username == "" {
				if username, err = c.promptRequired("username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.promptRequired("password: "); err != nil {
					return err
				}
			}

			identity, err := c.auth.Login(ctx, username, password)
			if err != nil {
				return err
			}
			success("signed in as %s (%s)", identity.Username, identity.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			username, err := c.promptRequired("username: ")
			if err != nil {
				return err
			}
			email, err := c.promptRequired("email: ")
			if err != nil {
				return err
			}
			password, err := c.promptRequired("password: ")
			if err != nil {
				return err
			}

			if err := c.auth.Register(ctx, username, email, password); err != nil {
				return err
			}
			success("account created, run `quizmaster login` to sign in")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			if err := c.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			success("signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			identity, err := c.auth.Whoami(cmd.Context())
			if errors.Is(err, domain.ErrNoToken) {
				warn("not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}
}
