package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/jobdeck/importer/internal/mapping"
	"github.com/jobdeck/importer/internal/record"
	"github.com/jobdeck/importer/internal/tabular"
)

func TestRunFullPipeline(t *testing.T) {
	csv := "Company,Position,Location,Status,Applied Date\n" +
		"Google,Engineer,New York,Applied,2024-01-15\n" +
		"Stripe,Designer,San Francisco,interviewing,01/20/2024\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.RunID == "" {
		t.Error("result has no run ID")
	}
	if res.Summary.TotalRows != 2 {
		t.Errorf("TotalRows = %d, want 2", res.Summary.TotalRows)
	}
	if res.Summary.SuccessfulImports != 2 || len(res.Records) != 2 {
		t.Fatalf("imported %d records, want 2", len(res.Records))
	}

	first := res.Records[0]
	if first.Company != "Google" || first.Position != "Engineer" {
		t.Errorf("first record = %+v", first)
	}
	if first.Status != record.StatusApplied {
		t.Errorf("first status = %q, want %q", first.Status, record.StatusApplied)
	}
	if first.AppliedDate != "2024-01-15" {
		t.Errorf("first applied date = %q, want 2024-01-15", first.AppliedDate)
	}

	second := res.Records[1]
	if second.Status != record.StatusInterviewing {
		t.Errorf("second status = %q, want %q", second.Status, record.StatusInterviewing)
	}
	if second.AppliedDate != "2024-01-20" {
		t.Errorf("second applied date = %q, want 2024-01-20 normalized from US format", second.AppliedDate)
	}
	if second.CreatedAt.IsZero() {
		t.Error("second record has no created timestamp")
	}

	if col, ok := res.Mapping.Column(mapping.FieldCompany); !ok || col != "Company" {
		t.Errorf("company mapped to %q, want Company", col)
	}
}

func TestRunProgressReports(t *testing.T) {
	csv := "Company,Position\nGoogle,Engineer\nStripe,Designer\nAdyen,Analyst\n"

	cfg := defaultConfig()
	cfg.Import.BatchSize = 1

	var reports []Progress
	_, err := New(cfg).Run(context.Background(), []byte(csv), Options{
		Progress: func(p Progress) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(reports) == 0 {
		t.Fatal("no progress reports")
	}

	wantOrder := []Stage{StageDetecting, StageDecoding, StageParsing, StageMapping,
		StageValidating, StageDeduplicating, StageConverting}
	seen := map[Stage]bool{}
	for _, p := range reports {
		seen[p.Stage] = true
		if p.Percent < 0 || p.Percent > 100 {
			t.Errorf("percent %d out of range for stage %s", p.Percent, p.Stage)
		}
	}
	for _, s := range wantOrder {
		if !seen[s] {
			t.Errorf("stage %s never reported", s)
		}
	}

	// Monotonic percent.
	for i := 1; i < len(reports); i++ {
		if reports[i].Percent < reports[i-1].Percent {
			t.Errorf("percent went backwards: %d after %d", reports[i].Percent, reports[i-1].Percent)
		}
	}

	last := reports[len(reports)-1]
	if last.Percent != 100 {
		t.Errorf("final percent = %d, want 100", last.Percent)
	}
	if last.Current != 3 || last.Total != 3 {
		t.Errorf("final counts = %d/%d, want 3/3", last.Current, last.Total)
	}
}

func TestRunEmptyFile(t *testing.T) {
	_, err := New(nil).Run(context.Background(), nil, Options{})
	if !errors.Is(err, tabular.ErrEmptyFile) {
		t.Errorf("Run(empty) error = %v, want ErrEmptyFile", err)
	}
}

func TestRunHeaderOnly(t *testing.T) {
	_, err := New(nil).Run(context.Background(), []byte("Company,Position\n"), Options{})
	if !errors.Is(err, tabular.ErrNoDataRows) {
		t.Errorf("Run(header only) error = %v, want ErrNoDataRows", err)
	}
}

func TestRunFileTooLarge(t *testing.T) {
	cfg := defaultConfig()
	cfg.Import.MaxFileSize = 10

	_, err := New(cfg).Run(context.Background(), []byte("Company,Position\nGoogle,Engineer\n"), Options{})
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Run(oversized) error = %v, want size limit error", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Run(ctx, []byte("Company,Position\nGoogle,Engineer\n"), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run(cancelled ctx) error = %v, want context.Canceled", err)
	}
}

func TestRunSkipsRowsMissingCompany(t *testing.T) {
	csv := "Company,Position\nGoogle,Engineer\n,Designer\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Summary.SuccessfulImports != 1 {
		t.Errorf("SuccessfulImports = %d, want 1", res.Summary.SuccessfulImports)
	}
	if res.Summary.SkippedRows != 1 {
		t.Errorf("SkippedRows = %d, want 1", res.Summary.SkippedRows)
	}
	found := false
	for _, s := range res.Summary.Suggestions {
		if strings.Contains(s, "critical errors") {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggestions = %v, want a critical-errors recommendation", res.Summary.Suggestions)
	}
}

func TestRunDetectsDuplicates(t *testing.T) {
	csv := "Company,Position,Applied Date\n" +
		"Google,Engineer,2024-01-15\n" +
		"google,Software Engineer,2024-01-16\n" +
		"Netflix,Data Scientist,2023-06-10\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Groups) != 1 {
		t.Fatalf("got %d duplicate groups, want 1", len(res.Groups))
	}
	if res.Summary.DuplicatesFound != 2 {
		t.Errorf("DuplicatesFound = %d, want 2", res.Summary.DuplicatesFound)
	}
	found := false
	for _, s := range res.Summary.Suggestions {
		if strings.Contains(s, "duplicates detected") {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggestions = %v, want a duplicate-review recommendation", res.Summary.Suggestions)
	}

	// Both records are still imported; resolution is the caller's decision.
	if res.Summary.SuccessfulImports != 3 {
		t.Errorf("SuccessfulImports = %d, want 3", res.Summary.SuccessfulImports)
	}
}

func TestRunSkipDedupe(t *testing.T) {
	csv := "Company,Position\nGoogle,Engineer\nGoogle,Engineer\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{SkipDedupe: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Groups) != 0 || res.Summary.DuplicatesFound != 0 {
		t.Errorf("dedupe ran despite SkipDedupe: groups=%d found=%d",
			len(res.Groups), res.Summary.DuplicatesFound)
	}
}

func TestRunAgainstExistingRecords(t *testing.T) {
	csv := "Company,Position,Applied Date\nGoogle,Engineer,2024-01-15\n"
	existing := []record.Application{{
		Company:     "Google",
		Position:    "Engineer",
		AppliedDate: "2024-01-14",
		Status:      record.StatusApplied,
	}}

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{Existing: existing})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	g := res.Groups[0]
	if !g.Members[1].Existing {
		t.Error("second member should be tagged as pre-existing")
	}
	if res.Summary.DuplicatesFound != 1 {
		t.Errorf("DuplicatesFound = %d, want 1 (only the incoming row counts)", res.Summary.DuplicatesFound)
	}
}

func TestRunTurkishCodePage(t *testing.T) {
	utf8CSV := "Şirket,Pozisyon,Durum,Başvuru Tarihi\n" +
		"Çağrı Merkezi A.Ş.,Mühendis,Başvuruldu,15.01.2024\n"
	enc := charmap.Windows1254.NewEncoder()
	raw, err := enc.Bytes([]byte(utf8CSV))
	if err != nil {
		t.Fatalf("fixture encode: %v", err)
	}
	if bytes.Equal(raw, []byte(utf8CSV)) {
		t.Fatal("fixture did not change under Windows-1254, test is vacuous")
	}

	res, err := New(nil).Run(context.Background(), raw, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Summary.SuccessfulImports != 1 {
		t.Fatalf("imported %d records, want 1", res.Summary.SuccessfulImports)
	}
	got := res.Records[0]
	if got.Company != "Çağrı Merkezi A.Ş." {
		t.Errorf("company = %q, want the Turkish name decoded intact", got.Company)
	}
	if got.Status != record.StatusApplied {
		t.Errorf("status = %q, want %q normalized from Turkish", got.Status, record.StatusApplied)
	}
	if got.AppliedDate != "2024-01-15" {
		t.Errorf("applied date = %q, want 2024-01-15", got.AppliedDate)
	}
}

func TestRunDefaultAppliedDate(t *testing.T) {
	csv := "Company,Position\nGoogle,Engineer\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := time.Now().UTC().Format("2006-01-02")
	if got := res.Records[0].AppliedDate; got != want {
		t.Errorf("applied date = %q, want today (%s)", got, want)
	}
}

func TestRunSkipValidationKeepsRawValues(t *testing.T) {
	csv := "Company,Position,Status\nGoogle,Engineer,definitely maybe\n"

	res, err := New(nil).Run(context.Background(), []byte(csv), Options{SkipValidation: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Issues) != 0 {
		t.Errorf("issues = %v, want none when validation is skipped", res.Issues)
	}
	if res.Summary.SuccessfulImports != 1 {
		t.Fatalf("imported %d records, want 1", res.Summary.SuccessfulImports)
	}
	// Unknown status still lands on the enum default.
	if res.Records[0].Status != record.StatusPending {
		t.Errorf("status = %q, want %q", res.Records[0].Status, record.StatusPending)
	}
}
