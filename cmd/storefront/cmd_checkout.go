package main

import (
	"fmt"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/spf13/cobra"
)

var shipping domain.ShippingInfo

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in the cart",
	Long: `Places an order for the cart. Shipping fields left empty are filled from the
saved profile location. Payment is recorded as "Card"; no card data is sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.Session.IsAuthenticated() {
			return errSignInRequired
		}
		if err := app.Cart.Err(); err != nil {
			return fmt.Errorf("could not load cart: %w", err)
		}

		form := checkout.Form{Shipping: shipping}
		form.PrefillShipping(app.Session.User())

		ctx, cancel := opContext(cmd)
		defer cancel()
		confirmation, err := app.Checkout.PlaceOrder(ctx, form)
		if err != nil {
			if msg := app.Orders.Error(); msg != "" {
				return fmt.Errorf("%s", msg)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s.\n", confirmation.ID, confirmation.Status)
		return nil
	},
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&shipping.Name, "name", "", "Recipient name")
	f.StringVar(&shipping.Address, "address", "", "Street address")
	f.StringVar(&shipping.City, "city", "", "City")
	f.StringVar(&shipping.State, "state", "", "State")
	f.StringVar(&shipping.Landmark, "landmark", "", "Landmark")
	f.StringVar(&shipping.Pincode, "pincode", "", "Pincode")
}
