package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliopt"
	"github.com/bileto/bileto/internal/cliutil"
	"github.com/bileto/bileto/searchengine"
)

func NewSearchCmd(env *cliopt.Env) *cobra.Command {
	var flags requestFlags
	var format string
	cmd := &cobra.Command{
		Use:       "search tickets|contracts",
		Short:     "Search tickets or contracts",
		Args:      entityArgs,
		ValidArgs: entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cliutil.ParseOutputFormat(format)
			if err != nil {
				return err
			}
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

			out := cmd.OutOrStdout()
			switch args[0] {
			case entityTickets:
				var page *searchengine.Page[searchengine.Ticket]
				if page, err = session.Searcher.Tickets(ctx, req); err == nil {
					err = printTickets(out, outFormat, page)
				}
			default:
				var page *searchengine.Page[searchengine.Contract]
				if page, err = session.Searcher.Contracts(ctx, req); err == nil {
					err = printContracts(out, outFormat, page)
				}
			}
			if closeErr := session.Close(out); err == nil {
				err = closeErr
			}
			return err
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().StringVar(&format, "format", "pretty", "format: pretty|json")
	return cmd
}

func printTickets(w io.Writer, format cliutil.OutputFormat, page *searchengine.Page[searchengine.Ticket]) error {
	if format == cliutil.FormatJSON {
		return cliutil.PrintJSON(w, page)
	}
	rows := make([][]string, 0, len(page.Items))
	for _, t := range page.Items {
		rows = append(rows, []string{
			"#" + strconv.FormatInt(t.ID, 10), t.Status, t.Type, t.Priority,
			cliutil.FormatID(t.AssigneeID), cliutil.FormatTime(t.UpdatedAt), t.Title,
		})
	}
	if err := cliutil.PrintTable(w, []string{"ID", "STATUS", "TYPE", "PRIORITY", "ASSIGNEE", "UPDATED", "TITLE"}, rows); err != nil {
		return err
	}
	printFooter(w, page.Page, page.Pages(), page.Total, page.Sort)
	return nil
}

func printContracts(w io.Writer, format cliutil.OutputFormat, page *searchengine.Page[searchengine.Contract]) error {
	if format == cliutil.FormatJSON {
		return cliutil.PrintJSON(w, page)
	}
	rows := make([][]string, 0, len(page.Items))
	for _, c := range page.Items {
		rows = append(rows, []string{
			"#" + strconv.FormatInt(c.ID, 10), "#" + strconv.FormatInt(c.OrganizationID, 10),
			cliutil.FormatTime(c.StartAt), cliutil.FormatTime(c.EndAt), c.Name,
		})
	}
	if err := cliutil.PrintTable(w, []string{"ID", "ORG", "START", "END", "NAME"}, rows); err != nil {
		return err
	}
	printFooter(w, page.Page, page.Pages(), page.Total, page.Sort)
	return nil
}

func printFooter(w io.Writer, page, pages, total int, sort string) {
	_, _ = fmt.Fprintf(w, "\npage %d/%d, %d results, sorted by %s\n", page, pages, total, sort)
}
