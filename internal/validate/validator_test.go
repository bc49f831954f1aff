package validate

import (
	"strings"
	"testing"

	"github.com/jobdeck/importer/internal/mapping"
	"github.com/jobdeck/importer/internal/tabular"
)

// testMapping builds a Mapping where each field key maps to a same-named column.
func testMapping(fields ...string) mapping.Mapping {
	m := mapping.Mapping{
		Columns:    make(map[string]string),
		Confidence: make(map[string]float64),
	}
	for _, f := range fields {
		m.Columns[f] = f
		m.Confidence[f] = 1
	}
	return m
}

func row(line int, values map[string]string) tabular.Row {
	return tabular.Row{Line: line, Values: values}
}

// ----------------------------------------------------------------------------
// Row Validation Tests
// ----------------------------------------------------------------------------

func TestValidateMissingCompanyBlocksRow(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldPosition)
	rows := []tabular.Row{
		row(2, map[string]string{mapping.FieldCompany: "", mapping.FieldPosition: "Engineer"}),
		row(3, map[string]string{mapping.FieldCompany: "Google", mapping.FieldPosition: "Engineer"}),
	}

	res := New().Validate(rows, m)

	if len(res.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(res.Errors), res.Errors)
	}
	if res.Errors[0].Row != 2 {
		t.Errorf("error row = %d, want 2", res.Errors[0].Row)
	}
	if len(res.Cleaned) != 1 {
		t.Fatalf("got %d cleaned rows, want 1 (blocked row excluded)", len(res.Cleaned))
	}
	if res.Cleaned[0].Get(mapping.FieldCompany) != "Google" {
		t.Errorf("surviving row company = %q, want Google", res.Cleaned[0].Get(mapping.FieldCompany))
	}
}

func TestValidateMissingPositionIsWarning(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldPosition)
	rows := []tabular.Row{
		row(2, map[string]string{mapping.FieldCompany: "Google", mapping.FieldPosition: ""}),
	}

	res := New().Validate(rows, m)

	if len(res.Errors) != 0 {
		t.Fatalf("got errors %v, want none; missing position is soft", res.Errors)
	}
	if len(res.Cleaned) != 1 {
		t.Fatal("row with empty position must survive")
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0].Message, "position") {
		t.Errorf("warnings = %v, want a position warning", res.Warnings)
	}
}

func TestValidateInvalidEmailValidDate(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldContactEmail, mapping.FieldAppliedDate)
	rows := []tabular.Row{
		row(2, map[string]string{
			mapping.FieldCompany:      "Google",
			mapping.FieldContactEmail: "invalid-email",
			mapping.FieldAppliedDate:  "2024-01-15",
		}),
	}

	res := New().Validate(rows, m)

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1 (the e-mail)", res.Warnings)
	}
	if res.Warnings[0].Column != mapping.FieldContactEmail {
		t.Errorf("warning column = %q, want %q", res.Warnings[0].Column, mapping.FieldContactEmail)
	}
	if got := res.Cleaned[0].Get(mapping.FieldAppliedDate); got != "2024-01-15" {
		t.Errorf("applied date = %q, want 2024-01-15 untouched", got)
	}
}

func TestValidateNormalizations(t *testing.T) {
	m := testMapping(
		mapping.FieldCompany, mapping.FieldStatus, mapping.FieldJobType,
		mapping.FieldAppliedDate, mapping.FieldJobURL, mapping.FieldSalary,
		mapping.FieldPriority,
	)
	rows := []tabular.Row{
		row(2, map[string]string{
			mapping.FieldCompany:     "  Acme   Corp  ",
			mapping.FieldStatus:      "başvuruldu",
			mapping.FieldJobType:     "Full Time",
			mapping.FieldAppliedDate: "01/15/2024",
			mapping.FieldJobURL:      "example.com/jobs/1",
			mapping.FieldSalary:      "80k - 100k",
			mapping.FieldPriority:    "1",
		}),
	}

	res := New().Validate(rows, m)

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	cleaned := res.Cleaned[0]

	tests := []struct {
		field, want string
	}{
		{mapping.FieldCompany, "Acme Corp"},
		{mapping.FieldStatus, "Applied"},
		{mapping.FieldJobType, "full_time"},
		{mapping.FieldAppliedDate, "2024-01-15"},
		{mapping.FieldJobURL, "https://example.com/jobs/1"},
		{mapping.FieldSalary, "$80,000 - $100,000"},
		{mapping.FieldPriority, "high"},
	}
	for _, tt := range tests {
		if got := cleaned.Get(tt.field); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestValidateUnknownStatusDefaultsPending(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldStatus)
	rows := []tabular.Row{
		row(2, map[string]string{mapping.FieldCompany: "Acme", mapping.FieldStatus: "ghosted"}),
	}

	res := New().Validate(rows, m)

	if got := res.Cleaned[0].Get(mapping.FieldStatus); got != "Pending" {
		t.Errorf("status = %q, want Pending default", got)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "unrecognized status") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want unrecognized-status warning", res.Warnings)
	}
}

func TestValidateUnparseableDateKept(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldAppliedDate)
	rows := []tabular.Row{
		row(2, map[string]string{mapping.FieldCompany: "Acme", mapping.FieldAppliedDate: "sometime last week"}),
	}

	res := New().Validate(rows, m)

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none; bad dates are soft", res.Errors)
	}
	if got := res.Cleaned[0].Get(mapping.FieldAppliedDate); got != "sometime last week" {
		t.Errorf("date = %q, want original kept", got)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].SuggestedFix == "" {
		t.Errorf("warnings = %v, want one with guidance", res.Warnings)
	}
}

// ----------------------------------------------------------------------------
// Batch and Cross-field Tests
// ----------------------------------------------------------------------------

func TestValidateWithinBatchDuplicates(t *testing.T) {
	m := testMapping(mapping.FieldCompany, mapping.FieldPosition)
	rows := []tabular.Row{
		row(2, map[string]string{mapping.FieldCompany: "Google", mapping.FieldPosition: "Engineer"}),
		row(3, map[string]string{mapping.FieldCompany: "Stripe", mapping.FieldPosition: "Engineer"}),
		row(4, map[string]string{mapping.FieldCompany: "GOOGLE", mapping.FieldPosition: "engineer"}),
	}

	res := New().Validate(rows, m)

	var dup *Issue
	for i, w := range res.Warnings {
		if strings.Contains(w.Message, "duplicate") {
			dup = &res.Warnings[i]
		}
	}
	if dup == nil {
		t.Fatalf("warnings = %v, want a within-batch duplicate flag", res.Warnings)
	}
	if dup.Row != 4 || !strings.Contains(dup.Message, "row 2") {
		t.Errorf("duplicate warning = %+v, want row 4 referencing row 2", dup)
	}
	if len(res.Cleaned) != 3 {
		t.Errorf("cleaned = %d rows, want 3; duplicates are not dropped here", len(res.Cleaned))
	}
}

func TestValidateCrossFieldChecks(t *testing.T) {
	m := testMapping(
		mapping.FieldCompany, mapping.FieldStatus,
		mapping.FieldAppliedDate, mapping.FieldInterviewDate,
	)

	tests := []struct {
		name    string
		values  map[string]string
		wantMsg string
	}{
		{
			name: "interview before applied",
			values: map[string]string{
				mapping.FieldCompany:       "Acme",
				mapping.FieldAppliedDate:   "2024-02-01",
				mapping.FieldInterviewDate: "2024-01-15",
			},
			wantMsg: "before applied date",
		},
		{
			name: "interviewing without interview date",
			values: map[string]string{
				mapping.FieldCompany: "Acme",
				mapping.FieldStatus:  "Interviewing",
			},
			wantMsg: "no interview date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New().Validate([]tabular.Row{row(2, tt.values)}, m)
			if len(res.Errors) != 0 {
				t.Fatalf("errors = %v, want none; cross-field issues are warnings", res.Errors)
			}
			found := false
			for _, w := range res.Warnings {
				if strings.Contains(w.Message, tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("warnings = %v, want one containing %q", res.Warnings, tt.wantMsg)
			}
		})
	}
}

// Validating a validator's own output again must be warning-free when the
// input had no unrecoverable values.
func TestValidateIdempotent(t *testing.T) {
	m := testMapping(
		mapping.FieldCompany, mapping.FieldPosition, mapping.FieldStatus,
		mapping.FieldJobType, mapping.FieldAppliedDate, mapping.FieldInterviewDate,
		mapping.FieldJobURL, mapping.FieldSalary, mapping.FieldContactEmail,
	)
	rows := []tabular.Row{
		row(2, map[string]string{
			mapping.FieldCompany:       "Acme   Corp",
			mapping.FieldPosition:      "Engineer",
			mapping.FieldStatus:        "görüşme",
			mapping.FieldJobType:       "Full-Time",
			mapping.FieldAppliedDate:   "15.01.2024",
			mapping.FieldInterviewDate: "01/20/2024",
			mapping.FieldJobURL:        "acme.example.com/jobs",
			mapping.FieldSalary:        "90k",
			mapping.FieldContactEmail:  "HR@Acme.COM ",
		}),
	}

	first := New().Validate(rows, m)
	if len(first.Errors) != 0 {
		t.Fatalf("first pass errors = %v", first.Errors)
	}
	if len(first.Warnings) == 0 {
		t.Fatal("first pass should rewrite values and warn")
	}

	// Feed the cleaned output back through as raw rows.
	again := make([]tabular.Row, len(first.Cleaned))
	for i, c := range first.Cleaned {
		values := make(map[string]string, len(c.Fields))
		for field, v := range c.Fields {
			values[field] = v
		}
		again[i] = row(c.Line, values)
	}

	second := New().Validate(again, m)
	if len(second.Errors) != 0 {
		t.Errorf("second pass errors = %v, want none", second.Errors)
	}
	if len(second.Warnings) != 0 {
		t.Errorf("second pass warnings = %v, want none on already-cleaned data", second.Warnings)
	}
}

// ----------------------------------------------------------------------------
// Normalizer Tests
// ----------------------------------------------------------------------------

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "iso passthrough", input: "2024-01-15", want: "2024-01-15", wantOK: true},
		{name: "us slashes", input: "01/15/2024", want: "2024-01-15", wantOK: true},
		{name: "us single digit", input: "1/5/2024", want: "2024-01-05", wantOK: true},
		{name: "eu dots", input: "15.01.2024", want: "2024-01-15", wantOK: true},
		{name: "two digit year", input: "1/15/24", want: "2024-01-15", wantOK: true},
		{name: "month name", input: "Jan 15, 2024", want: "2024-01-15", wantOK: true},
		{name: "garbage", input: "next tuesday", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "impossible date", input: "2024-02-31", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Round trip: any accepted date re-parses from its normalized form to the
// same calendar date.
func TestNormalizeDateRoundTrip(t *testing.T) {
	inputs := []string{"2024-01-15", "01/15/2024", "15.01.2024", "1/5/24", "Jan 2, 2023"}
	for _, in := range inputs {
		iso, ok := NormalizeDate(in)
		if !ok {
			t.Fatalf("NormalizeDate(%q) failed", in)
		}
		iso2, ok2 := NormalizeDate(iso)
		if !ok2 || iso2 != iso {
			t.Errorf("round trip of %q: %q -> %q", in, iso, iso2)
		}
	}
}

func TestNormalizeSalary(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "range with k", input: "80k - 100k", want: "$80,000 - $100,000", wantOK: true},
		{name: "canonical is stable", input: "$80,000 - $100,000", want: "$80,000 - $100,000", wantOK: true},
		{name: "turkish lira", input: "45.000 TL", want: "₺45,000", wantOK: true},
		{name: "plain number", input: "95000", want: "$95,000", wantOK: true},
		{name: "euro", input: "€60,000", want: "€60,000", wantOK: true},
		{name: "no digits", input: "competitive", want: "competitive", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeSalary(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeSalary(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NormalizeSalary(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input     string
		want      string
		wantValid bool
	}{
		{"https://example.com/jobs", "https://example.com/jobs", true},
		{"example.com/jobs", "https://example.com/jobs", true},
		{"www.example.com", "https://www.example.com", true},
		{"not a url", "https://not a url", false},
	}
	for _, tt := range tests {
		got, valid := NormalizeURL(tt.input)
		if valid != tt.wantValid {
			t.Errorf("NormalizeURL(%q) valid = %v, want %v", tt.input, valid, tt.wantValid)
			continue
		}
		if valid && got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
