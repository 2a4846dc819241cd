package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

func (c *cli) openCmd() *cobra.Command {
	var original, printOnly bool

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a saved page in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			link := a.Client.PageURL(cmd.Context(), id)
			if original {
				link, err = a.Client.OriginalURL(cmd.Context(), id)
				if err != nil {
					c.printer.Error("%s", workflow.Message(err))
					return reported(err)
				}
			}
			if printOnly {
				c.printer.Print("%s", link)
				return nil
			}
			if err := openInBrowser(c.browse, link); err != nil {
				middleware.Log.Debug().Err(err).Str("link", link).Msg("browser launch failed")
				c.printer.Error("Failed to open browser")
				c.printer.Print("%s", link)
				return nil
			}
			c.printer.Print("Opened browser to %s", link)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&original, "original", "o", false, "link to the original URL instead of the saved copy")
	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "print the link without opening a browser")
	return cmd
}
