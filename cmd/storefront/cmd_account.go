package main

import (
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/spf13/cobra"
)

var (
	credentials  domain.Credentials
	registration domain.Registration
	profile      domain.ProfileUpdate
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		user, err := app.Account.Login(ctx, credentials)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", user.Name)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		user, err := app.Account.Register(ctx, registration)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s.\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return app.Account.Logout(ctx)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		user := app.Session.User()
		if user == nil {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}
		fmt.Fprintf(out, "%s <%s> %s\n", user.Name, user.Email, user.Phone)
		if loc := user.Location; loc != nil {
			fmt.Fprintf(out, "%s, %s, %s %s\n", loc.Address, loc.City, loc.State, loc.Pincode)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update name, contact details and saved address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := app.Session.User()
		if current == nil {
			return errSignInRequired
		}
		update := mergeProfile(*current, profile)

		ctx, cancel := opContext(cmd)
		defer cancel()
		user, err := app.Account.UpdateProfile(ctx, update)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for %s.\n", user.Name)
		return nil
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <email>",
	Short: "Subscribe to the newsletter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return app.Account.Subscribe(ctx, args[0])
	},
}

// mergeProfile keeps the current value of every field the flags left empty.
func mergeProfile(current domain.User, flags domain.ProfileUpdate) domain.ProfileUpdate {
	out := domain.ProfileUpdate{Name: current.Name, Email: current.Email, Phone: current.Phone}
	if current.Location != nil {
		out.Location = *current.Location
	}
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&out.Name, flags.Name)
	pick(&out.Email, flags.Email)
	pick(&out.Phone, flags.Phone)
	pick(&out.Location.Address, flags.Location.Address)
	pick(&out.Location.City, flags.Location.City)
	pick(&out.Location.State, flags.Location.State)
	pick(&out.Location.Landmark, flags.Location.Landmark)
	pick(&out.Location.Pincode, flags.Location.Pincode)
	pick(&out.Location.Country, flags.Location.Country)
	return out
}

func init() {
	lf := loginCmd.Flags()
	lf.StringVarP(&credentials.EmailOrPhone, "user", "u", "", "Email or phone")
	lf.StringVarP(&credentials.Password, "password", "p", "", "Password")

	rf := registerCmd.Flags()
	rf.StringVar(&registration.Name, "name", "", "Full name")
	rf.StringVar(&registration.Email, "email", "", "Email")
	rf.StringVar(&registration.Phone, "phone", "", "Phone")
	rf.StringVarP(&registration.Password, "password", "p", "", "Password")

	pf := profileCmd.Flags()
	pf.StringVar(&profile.Name, "name", "", "Full name")
	pf.StringVar(&profile.Email, "email", "", "Email")
	pf.StringVar(&profile.Phone, "phone", "", "Phone")
	pf.StringVar(&profile.Location.Address, "address", "", "Street address")
	pf.StringVar(&profile.Location.City, "city", "", "City")
	pf.StringVar(&profile.Location.State, "state", "", "State")
	pf.StringVar(&profile.Location.Landmark, "landmark", "", "Landmark")
	pf.StringVar(&profile.Location.Pincode, "pincode", "", "Pincode")
	pf.StringVar(&profile.Location.Country, "country", "", "Country")
}
