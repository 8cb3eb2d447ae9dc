package main

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fentz26/focus/internal/models"
)

func TestParseWhere(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.FilterCondition
		wantErr bool
	}{
		{raw: "context:equals:@home", want: models.FilterCondition{Field: "context", Operator: "equals", Value: "@home"}},
		{raw: "Due:Overdue", want: models.FilterCondition{Field: "due", Operator: "overdue"}},
		{raw: "due:within_days:7", want: models.FilterCondition{Field: "due", Operator: "within_days", Days: 7}},
		{raw: "title:contains:re: budget", want: models.FilterCondition{Field: "title", Operator: "contains", Value: "re: budget"}},
		{raw: "due:within_days:soon", wantErr: true},
		{raw: "flagged:before:2024-01-01", wantErr: true},
		{raw: "status", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseWhere(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWhere failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestFormatCondition(t *testing.T) {
	for _, raw := range []string{"context:equals:@home", "due:overdue", "due:within_days:3"} {
		c, err := parseWhere(raw)
		if err != nil {
			t.Fatalf("parseWhere(%q) failed: %v", raw, err)
		}
		if got := formatCondition(c); got != raw {
			t.Errorf("Expected %q, got %q", raw, got)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	doc := exportDoc{
		Perspectives: []models.Perspective{{
			ID:   "p-1",
			Name: "Errands",
			Filter: models.FilterSet{
				Logic: models.LogicOr,
				Conditions: []models.FilterCondition{
					{Field: models.FieldContext, Operator: models.OpEquals, Value: "@town"},
					{Field: models.FieldDue, Operator: models.OpWithinDays, Days: 3},
				},
			},
			Sort:  models.SortKey{Field: models.SortDue, Direction: models.Descending},
			Group: models.GroupProject,
		}},
		Boards: []models.Board{{ID: "b-1", Name: "Home", Kind: models.BoardContext, Value: "@home"}},
	}

	var buf bytes.Buffer
	if err := writeExport(&buf, doc); err != nil {
		t.Fatalf("writeExport failed: %v", err)
	}
	if !strings.Contains(buf.String(), "within_days") {
		t.Errorf("Expected readable YAML, got:\n%s", buf.String())
	}

	got, err := readExport(&buf)
	if err != nil {
		t.Fatalf("readExport failed: %v", err)
	}
	if len(got.Perspectives) != 1 || len(got.Boards) != 1 {
		t.Fatalf("Unexpected document: %+v", got)
	}
	p := got.Perspectives[0]
	if p.Filter.Logic != models.LogicOr || len(p.Filter.Conditions) != 2 || p.Filter.Conditions[1].Days != 3 {
		t.Errorf("Filter not preserved: %+v", p.Filter)
	}
	if p.Sort != doc.Perspectives[0].Sort || p.Group != models.GroupProject {
		t.Errorf("Sort/group not preserved: %+v", p)
	}
}

func TestReadExport_Rejects(t *testing.T) {
	tests := map[string]string{
		"built-in id": `
perspectives:
  - id: "builtin:inbox"
    name: Inbox
    filter: {logic: and, conditions: []}
    sort: {field: created, direction: asc}
    group: none
`,
		"invalid condition": `
perspectives:
  - name: Broken
    filter:
      logic: and
      conditions:
        - {field: flagged, operator: before, value: "2024-01-01"}
    sort: {field: created, direction: asc}
    group: none
`,
		"malformed": "perspectives: [",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := readExport(strings.NewReader(data)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestViewQuery(t *testing.T) {
	q, err := viewQuery("", "", "")
	if err != nil || q != "" {
		t.Errorf("Expected empty query, got %q (%v)", q, err)
	}

	q, err = viewQuery("due", "milk", "2024-05-15T10:00:00Z")
	if err != nil {
		t.Fatalf("viewQuery failed: %v", err)
	}
	values, err := url.ParseQuery(strings.TrimPrefix(q, "?"))
	if err != nil {
		t.Fatalf("Bad query %q: %v", q, err)
	}
	if values.Get("by") != "due" || values.Get("q") != "milk" || values.Get("now") != "2024-05-15T10:00:00Z" {
		t.Errorf("Unexpected query values: %v", values)
	}

	if _, err := viewQuery("", "", "next tuesday"); err == nil {
		t.Error("Expected error for unparseable --now")
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("")
	if err != nil || got != nil {
		t.Errorf("Expected nil date for empty input, got %v (%v)", got, err)
	}

	got, err = parseDate("2024-05-20")
	if err != nil {
		t.Fatalf("parseDate failed: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.May || got.Day() != 20 || got.Location() != time.Local {
		t.Errorf("Unexpected date %v", got)
	}

	if _, err := parseDate("20/05/2024"); err == nil {
		t.Error("Expected error for unsupported layout")
	}
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz789"}
	self := func(s string) string { return s }

	if got, err := matchID("xyz", ids, self); err != nil || got != "xyz789" {
		t.Errorf("Expected unique prefix match, got %q (%v)", got, err)
	}
	if got, err := matchID("abc123", ids, self); err != nil || got != "abc123" {
		t.Errorf("Expected exact match, got %q (%v)", got, err)
	}
	if _, err := matchID("ab", ids, self); err == nil {
		t.Error("Expected ambiguous prefix error")
	}
	if _, err := matchID("q", ids, self); err == nil {
		t.Error("Expected no-match error")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"café au lait ☕ every morning", 10, "café au..."},
		{"日本語のタスクタイトル", 8, "日本語のタ..."},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
