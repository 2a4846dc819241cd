package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the server URL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the settings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			c.printer.Print("%s %s", c.printer.Bold("server_url:"), a.Settings.ServerURL(cmd.Context()))
			c.printer.Print("%s %s", c.printer.Bold("store:"), c.cfg.SyncStore)
			c.printer.Print("%s %s", c.printer.Bold("tag_store:"), c.cfg.LocalStore)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <server-url>",
		Short: "Validate and store the server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if _, err := a.Controller.SaveSettings(cmd.Context(), args[0]); err != nil {
				return reported(err)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Store the default server URL again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			// Reset only fills the form; saving it is a separate step.
			if _, err := a.Controller.SaveSettings(cmd.Context(), a.Controller.Reset()); err != nil {
				return reported(err)
			}
			return nil
		},
	})

	return cmd
}
