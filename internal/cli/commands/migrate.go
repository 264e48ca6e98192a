package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/cliutil"
	"github.com/bileto/bileto/searchengine/storage"
)

func NewMigrateCmd(env *cliopt.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Bileto tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()
			session, err := cliutil.Open(ctx, env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err = session.Searcher.Migrate(ctx); err == nil {
				_, _ = fmt.Fprintf(out, "Migrated %s backend to schema version %s\n", env.Config.Database.Backend, storage.SchemaVersion)
			}
			if closeErr := session.Close(out); err == nil {
				err = closeErr
			}
			return err
		},
	}
}
