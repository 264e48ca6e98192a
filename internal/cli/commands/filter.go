package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/cliutil"
	"github.com/bileto/bileto/searchengine/contract"
	"github.com/bileto/bileto/searchengine/filter"
)

type filterOutput struct {
	Representable bool                `json:"representable"`
	Text          string              `json:"text,omitempty"`
	Filters       map[string][]string `json:"filters,omitempty"`
	Query         string              `json:"query,omitempty"`
}

func NewFilterCmd(env *cliopt.Env) *cobra.Command {
	var q, format string
	cmd := &cobra.Command{
		Use:       "filter tickets|contracts",
		Short:     "Reduce a query to its quick-search filter",
		Long:      "Reduce a query to its quick-search filter. Queries using OR, groups or unsupported qualifiers are reported as not representable.",
		Args:      entityArgs,
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cliutil.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			parsed, err := cliutil.ParseQuery(q)
			if err != nil {
				return err
			}

			var f *filter.Filter
			if args[0] == entityContracts {
				cf, err := contract.FromQuery(parsed)
				if err != nil {
					return err
				}
				if cf != nil {
					f = cf.Filter
				}
			} else {
				ctx, cancel := env.Context(cmd.Context())
				defer cancel()
				session, err := cliutil.Open(ctx, env)
				if err != nil {
					return err
				}
				tf, err := session.Searcher.TicketFilter(ctx, parsed)
				if closeErr := session.Close(cmd.ErrOrStderr()); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				if tf != nil {
					f = tf.Filter
				}
			}
			return printFilter(cmd.OutOrStdout(), outFormat, f)
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "query to reduce")
	cmd.Flags().StringVar(&format, "format", "pretty", "format: pretty|json")
	return cmd
}

func printFilter(w io.Writer, format cliutil.OutputFormat, f *filter.Filter) error {
	out := filterOutput{Representable: f != nil}
	if f != nil {
		out.Text = f.Text()
		out.Query = f.ToTextualQuery()
		out.Filters = make(map[string][]string)
		for _, name := range f.Names() {
			out.Filters[name], _ = f.GetFilter(name)
		}
	}

	if format == cliutil.FormatJSON {
		return cliutil.PrintJSON(w, out)
	}
	if f == nil {
		_, _ = fmt.Fprintln(w, "not representable")
		return nil
	}
	rows := [][]string{{"text", out.Text}}
	for _, name := range f.Names() {
		values := out.Filters[name]
		if values == nil {
			rows = append(rows, []string{name, "(none)"})
			continue
		}
		rows = append(rows, []string{name, strings.Join(values, ", ")})
	}
	if err := cliutil.PrintTable(w, []string{"FILTER", "VALUES"}, rows); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", out.Query)
	return nil
}
