package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/spf13/cobra"
)

var errSignInRequired = errors.New("sign in first with `storefront login`")

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change the cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart with its subtotal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.Session.IsAuthenticated() {
			return errSignInRequired
		}
		// already fetched at start; surface a failure of that fetch here
		if err := app.Cart.Err(); err != nil {
			return fmt.Errorf("could not load cart: %w", err)
		}
		printCart(cmd)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product id or name> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.Session.IsAuthenticated() {
			return errSignInRequired
		}
		quantity := 1
		if len(args) == 2 {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			quantity = q
		}

		ctx, cancel := opContext(cmd)
		defer cancel()
		product, err := app.Catalog.Find(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.Cart.Add(ctx, product.ID, quantity); err != nil {
			return err
		}
		printCart(cmd)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.Session.IsAuthenticated() {
			return errSignInRequired
		}
		ctx, cancel := opContext(cmd)
		defer cancel()
		if err := app.Cart.Remove(ctx, args[0]); err != nil {
			return err
		}
		printCart(cmd)
		return nil
	},
}

func init() {
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
}

func printCart(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	items := app.Cart.Visible()
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, it.Price)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "Subtotal: %s\n", domain.FormatAmount(app.Cf.CurrencyGlyph, app.Cart.Subtotal()))
}
