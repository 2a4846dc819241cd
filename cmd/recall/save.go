package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkolesni-prog/recall/internal/tabs"
)

func (c *cli) saveCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "save <url>",
		Short: "Save a URL to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			ctx := tabs.WithActiveTab(cmd.Context(), args[0])
			if _, err := a.Controller.Save(ctx, strings.Join(tags, ", ")); err != nil {
				return reported(err)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "tags to add to the saved page")
	return cmd
}
