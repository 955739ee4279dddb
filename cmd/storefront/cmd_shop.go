package main

import (
	"github.com/fjod/go_storefront/internal/tui"
	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse products and manage the cart interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(tui.Deps{
			Cart:     app.Cart,
			Catalog:  app.Catalog,
			Checkout: app.Checkout,
			Orders:   app.Orders,
			Feed:     app.Feed,
			User:     app.Session.User(),
			Glyph:    app.Cf.CurrencyGlyph,
		})
	},
}
