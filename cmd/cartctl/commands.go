package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ahinestrog/cartsync/internal/config"
	"github.com/ahinestrog/cartsync/internal/ui"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. The returned cleanup releases whatever
// the pre-run opened, and is safe to call when nothing was opened.
func newRootCmd() (*cobra.Command, func()) {
	var a *app
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Drive the shop cart from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			setupLogging(cfg.ServiceEnv)
			var err error
			a, err = newApp(cmd.Context(), cfg)
			return err
		},
	}
	get := func() *app { return a }
	root.AddCommand(newAddCmd(get), newRemoveCmd(get), newUpdateCmd(get), newCookieCmd(get))
	return root, func() {
		if a != nil {
			a.close()
		}
	}
}

func newAddCmd(a func() *app) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := a().newSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), true, nil)
			return s.finish(cmd.OutOrStdout(), s.client.AddToCart(ctx, args[0], qty))
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")
	return cmd
}

func newRemoveCmd(a func() *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			row := &ui.RowSpec{ProductID: args[0], Title: "#" + args[0], NoInput: true, NoButtons: true}
			s := a().newSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), yes, row)
			return s.finish(cmd.OutOrStdout(), s.client.RemoveFromCart(ctx, args[0]))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newUpdateCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			row := &ui.RowSpec{ProductID: args[0], Title: "#" + args[0]}
			s := a().newSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), true, row)
			return s.finish(cmd.OutOrStdout(), s.client.UpdateQuantity(ctx, args[0], qty))
		},
	}
}

func newCookieCmd(a func() *app) *cobra.Command {
	cookie := &cobra.Command{
		Use:   "cookie",
		Short: "Manage stored cookies (session, anti-forgery token)",
	}
	cookie.AddCommand(&cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Store a cookie for the configured cart host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a().jar.Set(cmd.Context(), a().host, &http.Cookie{Name: args[0], Value: args[1], Path: "/"})
		},
	})
	cookie.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored cookie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a().jar.Get(cmd.Context(), a().host, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	})
	return cookie
}
