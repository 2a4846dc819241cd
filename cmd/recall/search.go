package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkolesni-prog/recall/internal/output"
	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

func (c *cli) searchCmd() *cobra.Command {
	q := recall.SearchQuery{Limit: 5}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search through saved web pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			q.Query = strings.Join(args, " ")
			results, err := a.Client.Search(cmd.Context(), q)
			if err != nil {
				c.printer.Error("%s", workflow.Message(err))
				return reported(err)
			}

			if len(results) == 0 {
				if len(q.Tags) > 0 {
					c.printer.Info("No results found for query: %s with tags [%s]", q.Query, strings.Join(q.Tags, ", "))
				} else {
					c.printer.Info("No results found for query: %s", q.Query)
				}
				return nil
			}
			return output.SearchResults(c.printer.Out(), results)
		},
	}

	cmd.Flags().IntVarP(&q.Limit, "limit", "l", q.Limit, "maximum number of results to return")
	cmd.Flags().StringSliceVarP(&q.Tags, "tags", "t", nil, "tags to filter the search by")
	cmd.Flags().BoolVarP(&q.WholeWord, "whole", "w", false, "only match the query as a whole word")
	return cmd
}
