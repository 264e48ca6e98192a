package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cli/commands"
	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/searchengine"
)

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// NewRootCmd returns the bileto-search command tree.
func NewRootCmd() *cobra.Command {
	env := &cliopt.Env{}
	root := &cobra.Command{
		Use:           "bileto-search",
		Short:         "Search Bileto tickets and contracts",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.Load(cmd.ErrOrStderr())
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	cliopt.BindGlobalFlags(root.PersistentFlags(), &env.Options)

	root.AddCommand(
		commands.NewMigrateCmd(env),
		commands.NewSearchCmd(env),
		commands.NewCountCmd(env),
		commands.NewFilterCmd(env),
		commands.NewParseCmd(),
		commands.NewQualifiersCmd(),
	)
	return root
}

// Run executes argv and returns the exit code: 0 on success, 2 for invalid
// flags and queries, 1 for everything else.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) || searchengine.IsKind(err, searchengine.ErrQuerySyntax) || searchengine.IsKind(err, searchengine.ErrQueryValue) {
		return 2
	}
	return 1
}

// Execute runs the CLI with the process streams and returns an exit code.
func Execute(argv []string) int {
	return Run(context.Background(), argv, os.Stdout, os.Stderr)
}
