package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dkolesni-prog/recall/internal/recall"
)

func (c *cli) testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test [server-url]",
		Short: "Check that a Recall server answers",
		Long:  "Probes the given server URL, or the stored one when none is given. Nothing is saved.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			candidate := ""
			if len(args) == 1 {
				candidate = args[0]
			}
			res, err := a.Controller.Test(cmd.Context(), candidate)
			if err != nil {
				return err
			}
			if res.Status != recall.Reachable {
				return reported(errors.New(res.Status.String()))
			}
			return nil
		},
	}
}
