package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/searchengine"
	"github.com/bileto/bileto/searchengine/contract"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
	"github.com/bileto/bileto/searchengine/ticket"
)

func NewQualifiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "qualifiers tickets|contracts",
		Short:     "List the qualifiers and sort keys of an entity",
		Args:      entityArgs,
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			var b *qb.Builder
			var sorts []searchengine.SortOption
			if args[0] == entityTickets {
				b, sorts = ticket.NewBuilder(0), searchengine.TicketSorts
			} else {
				b, sorts = contract.NewBuilder(time.Now()), searchengine.ContractSorts
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "qualifiers: %s\n", strings.Join(b.Qualifiers(), ", "))
			_, _ = fmt.Fprintf(w, "sorts:      %s (default %s)\n", strings.Join(searchengine.SortKeys(sorts), ", "), sorts[0].Key)
			return nil
		},
	}
}
