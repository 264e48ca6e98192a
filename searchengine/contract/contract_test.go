package contract

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bileto/bileto/searchengine/query"
	qb "github.com/bileto/bileto/searchengine/querybuilder"
)

var now = time.Unix(1_700_000_000, 0)

func mustQuery(t *testing.T, input string) *query.Query {
	t.Helper()
	q, err := query.FromString(input)
	if err != nil {
		t.Fatalf("FromString(%q): unexpected error: %v", input, err)
	}
	return q
}

func TestBuildStatuses(t *testing.T) {
	tests := []struct {
		input  string
		where  string
		params int
	}{
		{"status:coming", "c.start_at > :q0p0", 1},
		{"status:ongoing", "(c.start_at <= :q0p0 AND c.end_at >= :q0p1)", 2},
		{"status:finished", "c.end_at < :q0p0", 1},
		{"-status:finished", "NOT (c.end_at < :q0p0)", 1},
		{"status:coming,finished", "(c.start_at > :q0p0 OR c.end_at < :q0p1)", 2},
	}
	for _, tt := range tests {
		where, params, err := NewBuilder(now).BuildQuery(mustQuery(t, tt.input), 0)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if where != tt.where {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.where, where)
		}
		if len(params) != tt.params {
			t.Fatalf("%q: expected %d params, got %v", tt.input, tt.params, params)
		}
		for _, p := range params {
			if p.Value != now.Unix() {
				t.Errorf("%q: expected now as parameter, got %v", tt.input, p.Value)
			}
		}
	}
}

func TestBuildOrgAndText(t *testing.T) {
	where, params, err := NewBuilder(now).BuildQuery(mustQuery(t, "support org:#4,acme"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `(LOWER(c.name) LIKE :q0p0 ESCAPE '\' AND (c.organization_id = :q0p1` +
		` OR c.organization_id IN (SELECT sub_table_0.id FROM organizations sub_table_0 WHERE LOWER(sub_table_0.name) LIKE :q0p2 ESCAPE '\')))`
	if where != want {
		t.Errorf("expected\n%s\ngot\n%s", want, where)
	}
	values := []any{params[0].Value, params[1].Value, params[2].Value}
	if !reflect.DeepEqual(values, []any{"%support%", int64(4), "%acme%"}) {
		t.Errorf("unexpected params %v", params)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := map[string]error{
		"status:expired": qb.ErrInvalidValue,
		"no:status":      qb.ErrInvalidValue,
		"no:org":         qb.ErrInvalidValue,
		"assignee:@me":   qb.ErrUnknownQualifier,
	}
	for input, want := range tests {
		_, err := NewBuilder(now).Create(mustQuery(t, input))
		if !errors.Is(err, want) {
			t.Errorf("%q: expected %v, got %v", input, want, err)
		}
	}
}

func TestFilter(t *testing.T) {
	f, err := FromQuery(mustQuery(t, "maintenance org:#2 status:ongoing"))
	if err != nil || f == nil {
		t.Fatalf("unexpected result %v, %v", f, err)
	}
	if got := f.ToTextualQuery(); got != "maintenance status:ongoing org:#2" {
		t.Errorf("unexpected textual query %q", got)
	}

	for _, input := range []string{"status:coming OR org:#1", "-org:#1", "label:x"} {
		f, err := FromQuery(mustQuery(t, input))
		if err != nil || f != nil {
			t.Errorf("%q: expected not representable, got %v, %v", input, f, err)
		}
	}

	for _, input := range []string{"status:expired", "org:acme", "no:org"} {
		f, err := FromQuery(mustQuery(t, input))
		if err != nil || f != nil {
			t.Errorf("%q: expected not representable, got %v, %v", input, f, err)
		}
	}

	f = NewFilter()
	if err := f.SetFilter("org", []string{"acme"}); !errors.Is(err, qb.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
