// Command posctl is a terminal front end for the POS API: login, menu and
// cart, checkout, kitchen display, payments and reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"restaurant-pos-api/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// app is the state every subcommand works against
type app struct {
	api     *client.Client
	store   *client.Store
	session *client.Session
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "posctl.db"
	}
	return filepath.Join(dir, "posctl", "state.db")
}

func newRootCmd() *cobra.Command {
	a := &app{}
	v := viper.New()
	v.SetEnvPrefix("POS")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "posctl",
		Short:         "Restaurant POS command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("state")
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return err
			}
			store, err := client.OpenStore(path)
			if err != nil {
				return err
			}
			a.store = store
			a.api = client.New(v.GetString("addr"), "")

			// restore the previous login, if any
			if sess, err := store.LoadSession(); err == nil {
				a.session = sess
				a.api.SetToken(sess.Token)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().String("addr", "http://localhost:5000", "API base URL (env POS_ADDR)")
	root.PersistentFlags().String("state", defaultStatePath(), "local state file (env POS_STATE)")
	v.BindPFlag("addr", root.PersistentFlags().Lookup("addr"))
	v.BindPFlag("state", root.PersistentFlags().Lookup("state"))

	root.AddCommand(
		a.loginCmd(), a.registerCmd(), a.logoutCmd(), a.whoamiCmd(),
		a.menuCmd(), a.cartCmd(), a.checkoutCmd(),
		a.ordersCmd(), a.orderCmd(), a.kitchenCmd(),
		a.statsCmd(), a.reportCmd(), a.themeCmd(),
	)
	return root
}

func (a *app) requireLogin() error {
	if a.session == nil {
		return client.ErrNoSession
	}
	return nil
}
