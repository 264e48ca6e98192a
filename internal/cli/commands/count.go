package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/cliutil"
)

func NewCountCmd(env *cliopt.Env) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:       "count tickets|contracts",
		Short:     "Count the tickets or contracts matching a query",
		Args:      entityArgs,
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(env)
			if err != nil {
				return err
			}

			ctx, cancel := env.Context(cmd.Context())
			defer cancel()
			session, err := cliutil.Open(ctx, env)
			if err != nil {
				return err
			}

			var n int
			if args[0] == entityTickets {
				n, err = session.Searcher.CountTickets(ctx, req)
			} else {
				n, err = session.Searcher.CountContracts(ctx, req)
			}
			out := cmd.OutOrStdout()
			if err == nil {
				_, _ = fmt.Fprintln(out, n)
			}
			if closeErr := session.Close(out); err == nil {
				err = closeErr
			}
			return err
		},
	}
	flags.bind(cmd, false)
	return cmd
}
