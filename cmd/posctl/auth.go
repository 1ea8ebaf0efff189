package main

import (
	"fmt"

	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.api.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.store.SaveSession(*sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.User.Name, sess.User.Role)
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "register <name> <email> <password>",
		Short: "Create an account; staff roles wait for admin approval",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, msg, err := a.api.Register(cmd.Context(), services.RegisterInput{
				Name: args[0], Email: args[1], Password: args[2], Role: models.UserRole(role),
			})
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			}
			if err := a.store.SaveSession(*sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", sess.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "customer, waiter, kitchen, cashier, staff or admin")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session and cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.ClearSession()
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			u, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			status := "active"
			if !u.IsActive {
				status = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nrole: %s\nstatus: %s\n", u.Name, u.Email, u.Role, status)
			return nil
		},
	}
}
