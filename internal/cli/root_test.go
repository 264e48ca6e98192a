package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func newDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	code, out, errOut := run(t, "--sqlite-path", dbPath, "migrate")
	if code != 0 {
		t.Fatalf("migrate exited with %d: %s", code, errOut)
	}
	if !strings.Contains(out, "schema version 1") {
		t.Errorf("unexpected migrate output %q", out)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	_, err = db.Exec(`
INSERT INTO organizations(id, name) VALUES (1, 'Acme');
INSERT INTO users(id, name, email) VALUES (1, 'Alice', 'alice@acme.test');
INSERT INTO labels(id, name) VALUES (1, 'Hardware');
INSERT INTO tickets(id, title, status, organization_id, requester_id, assignee_id, created_at, updated_at) VALUES
  (1, 'Printer on fire', 'new', 1, 1, NULL, 1700000001, 1700000003),
  (2, 'VPN down', 'in_progress', 1, 1, 1, 1700000002, 1700000002),
  (3, 'Old request', 'closed', 1, 1, 1, 1700000000, 1700000000);
INSERT INTO ticket_labels(ticket_id, label_id) VALUES (1, 1);
INSERT INTO contracts(id, name, organization_id, start_at, end_at) VALUES (1, 'Acme support', 1, 0, 4102444800);
`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dbPath
}

func TestSearchTicketsJSON(t *testing.T) {
	dbPath := newDatabase(t)
	code, out, errOut := run(t, "--sqlite-path", dbPath, "search", "tickets", "-q", "status:open", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}

	var page struct {
		Items []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
		Total int    `json:"total"`
		Sort  string `json:"sort"`
	}
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if page.Total != 2 || len(page.Items) != 2 || page.Items[0].ID != 1 || page.Items[1].ID != 2 {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Sort != "updated-desc" {
		t.Errorf("expected default sort, got %q", page.Sort)
	}
}

func TestSearchPretty(t *testing.T) {
	dbPath := newDatabase(t)
	code, out, errOut := run(t, "--sqlite-path", dbPath, "search", "tickets", "--actor", "1", "-q", "assignee:@me", "--sort", "created-asc")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "VPN down") || !strings.Contains(out, "Old request") || strings.Contains(out, "Printer") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "page 1/1, 2 results, sorted by created-asc") {
		t.Errorf("missing footer:\n%s", out)
	}

	code, out, errOut = run(t, "--sqlite-path", dbPath, "search", "contracts", "-q", "status:ongoing")
	if code != 0 || !strings.Contains(out, "Acme support") {
		t.Errorf("exit %d, output %q, stderr %q", code, out, errOut)
	}
}

func TestCountWithMetrics(t *testing.T) {
	dbPath := newDatabase(t)
	code, out, errOut := run(t, "--sqlite-path", dbPath, "--metrics", "count", "tickets", "-q", "no:assignee")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "1\n") {
		t.Errorf("expected count 1, got %q", out)
	}
	if !strings.Contains(out, `bileto_searches_total{entity="tickets",op="count",outcome="ok"} 1`) {
		t.Errorf("missing metrics in output:\n%s", out)
	}
}

func TestFilter(t *testing.T) {
	dbPath := newDatabase(t)

	code, out, errOut := run(t, "--sqlite-path", dbPath, "filter", "tickets", "-q", "printer label:hardware")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "printer label:Hardware") {
		t.Errorf("expected normalized label, got:\n%s", out)
	}

	for _, q := range []string{"foo OR bar", "assignee:bob"} {
		code, out, errOut = run(t, "--sqlite-path", dbPath, "filter", "tickets", "-q", q)
		if code != 0 || strings.TrimSpace(out) != "not representable" {
			t.Errorf("%q: exit %d, output %q, stderr %q", q, code, out, errOut)
		}
	}

	code, out, errOut = run(t, "filter", "contracts", "-q", "status:ongoing org:#1", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	var f struct {
		Representable bool                `json:"representable"`
		Filters       map[string][]string `json:"filters"`
		Query         string              `json:"query"`
	}
	if err := json.Unmarshal([]byte(out), &f); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !f.Representable || f.Query != "status:ongoing org:#1" || f.Filters["org"][0] != "#1" {
		t.Errorf("unexpected filter %+v", f)
	}
}

func TestParse(t *testing.T) {
	code, out, errOut := run(t, "parse", "-q", "status:open -(a OR no:label)", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	var parsed struct {
		Tokens []struct {
			Kind string `json:"kind"`
		} `json:"tokens"`
		Conditions []struct {
			Kind       string `json:"kind"`
			Not        bool   `json:"not"`
			Conditions []struct {
				Kind string `json:"kind"`
				Or   bool   `json:"or"`
				Null bool   `json:"null"`
			} `json:"conditions"`
		} `json:"conditions"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(parsed.Conditions) != 2 || parsed.Conditions[0].Kind != "qualifier" {
		t.Fatalf("unexpected conditions %+v", parsed.Conditions)
	}
	group := parsed.Conditions[1]
	if group.Kind != "group" || !group.Not || len(group.Conditions) != 2 {
		t.Fatalf("unexpected group %+v", group)
	}
	if group.Conditions[0].Kind != "text" || !group.Conditions[1].Or || !group.Conditions[1].Null {
		t.Errorf("unexpected group conditions %+v", group.Conditions)
	}
	if parsed.Tokens[0].Kind != "Qualifier" {
		t.Errorf("unexpected first token %+v", parsed.Tokens[0])
	}

	code, out, _ = run(t, "parse", "-q", "")
	if code != 0 || !strings.Contains(out, "matches everything") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestQualifiers(t *testing.T) {
	code, out, _ := run(t, "qualifiers", "tickets")
	if code != 0 || !strings.Contains(out, "involves") || !strings.Contains(out, "default updated-desc") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestExitCodes(t *testing.T) {
	dbPath := newDatabase(t)
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"unknown qualifier", []string{"--sqlite-path", dbPath, "search", "tickets", "-q", "bogus:x"}, 2, "unknown qualifier"},
		{"syntax error", []string{"parse", "-q", `"open`}, 2, "missing closing quote"},
		{"unknown flag", []string{"search", "tickets", "--bogus"}, 2, "unknown flag"},
		{"unknown entity", []string{"count", "users"}, 1, "invalid argument"},
		{"bad format", []string{"--sqlite-path", dbPath, "search", "tickets", "--format", "xml"}, 1, "unknown format"},
		{"bad backend", []string{"--backend", "mysql", "count", "tickets"}, 1, "unknown database backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(t, tt.args...)
			if code != tt.code || !strings.Contains(errOut, tt.want) {
				t.Errorf("expected exit %d with %q, got %d: %s", tt.code, tt.want, code, errOut)
			}
		})
	}
}
