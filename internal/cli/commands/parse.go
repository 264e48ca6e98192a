package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bileto/bileto/internal/cliutil"
	"github.com/bileto/bileto/searchengine"
	"github.com/bileto/bileto/searchengine/query"
)

type tokenOutput struct {
	Kind  string `json:"kind"`
	Raw   string `json:"raw"`
	Value string `json:"value,omitempty"`
	Pos   int    `json:"pos"`
}

type conditionOutput struct {
	Kind       string            `json:"kind"`
	Not        bool              `json:"not,omitempty"`
	Or         bool              `json:"or,omitempty"`
	Name       string            `json:"name,omitempty"`
	Values     []string          `json:"values,omitempty"`
	Null       bool              `json:"null,omitempty"`
	Terms      []string          `json:"terms,omitempty"`
	Conditions []conditionOutput `json:"conditions,omitempty"`
}

// NewParseCmd prints how a query is tokenized and parsed. It does not touch
// the database.
func NewParseCmd() *cobra.Command {
	var q, format string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Show the tokens and syntax tree of a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cliutil.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			tokens, err := query.Lex(q)
			if err != nil {
				return searchengine.QueryError("", err)
			}
			parsed, err := searchengine.ParseQuery(q)
			if err != nil {
				return err
			}

			toks := make([]tokenOutput, 0, len(tokens))
			for _, t := range tokens {
				if t.Kind == query.TokEOF {
					continue
				}
				toks = append(toks, tokenOutput{Kind: t.Kind.String(), Raw: t.Raw, Value: t.Value, Pos: t.Pos})
			}
			conds := conditionsOutput(parsed)

			w := cmd.OutOrStdout()
			if outFormat == cliutil.FormatJSON {
				return cliutil.PrintJSON(w, map[string]any{"tokens": toks, "conditions": conds})
			}
			rows := make([][]string, 0, len(toks))
			for _, t := range toks {
				rows = append(rows, []string{strconv.Itoa(t.Pos), t.Kind, t.Raw})
			}
			if err := cliutil.PrintTable(w, []string{"POS", "KIND", "RAW"}, rows); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w)
			if len(conds) == 0 {
				_, _ = fmt.Fprintln(w, "(empty query, matches everything)")
			}
			printConditions(w, conds, 0)
			return nil
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "query to parse")
	cmd.Flags().StringVar(&format, "format", "pretty", "format: pretty|json")
	return cmd
}

func conditionsOutput(q *query.Query) []conditionOutput {
	var out []conditionOutput
	for _, c := range q.Conditions() {
		node := conditionOutput{Not: c.IsNot(), Or: c.IsOr()}
		switch c := c.(type) {
		case *query.Text:
			node.Kind = "text"
			node.Terms = c.Terms
		case *query.Qualifier:
			node.Kind = "qualifier"
			node.Name = c.Name
			node.Values = c.Values
			node.Null = c.IsNull()
		case *query.Group:
			node.Kind = "group"
			node.Conditions = conditionsOutput(c.Query)
		}
		out = append(out, node)
	}
	return out
}

func printConditions(w io.Writer, conds []conditionOutput, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, c := range conds {
		op := "AND"
		if c.Or {
			op = "OR"
		}
		if i == 0 {
			op = "-"
		}
		if c.Not {
			op += " NOT"
		}
		switch c.Kind {
		case "text":
			_, _ = fmt.Fprintf(w, "%s%s text %s\n", indent, op, strings.Join(c.Terms, " | "))
		case "qualifier":
			values := "null"
			if !c.Null {
				values = strings.Join(c.Values, " | ")
			}
			_, _ = fmt.Fprintf(w, "%s%s %s: %s\n", indent, op, c.Name, values)
		case "group":
			_, _ = fmt.Fprintf(w, "%s%s group\n", indent, op)
			printConditions(w, c.Conditions, depth+1)
		}
	}
}
