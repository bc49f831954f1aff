// Package validate cleans mapped rows and partitions problems into hard
// errors and soft warnings.
//
// Errors block a row from producing a record (today that is only a missing
// company). Warnings are auto-corrected or annotated and the row proceeds,
// so the caller always gets the complete picture of a batch instead of a
// first-bad-row abort.
package validate

import (
	"fmt"
	"strings"

	"github.com/jobdeck/importer/internal/mapping"
	"github.com/jobdeck/importer/internal/record"
	"github.com/jobdeck/importer/internal/tabular"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, addressed by spreadsheet row number.
type Issue struct {
	Row          int
	Column       string
	Message      string
	Severity     Severity
	SuggestedFix string
}

func (i Issue) String() string {
	return fmt.Sprintf("row %d, %s: %s", i.Row, i.Column, i.Message)
}

// CleanedRow is a validated row with normalized values keyed by domain field.
type CleanedRow struct {
	Line   int
	Fields map[string]string
}

// Get returns a cleaned field value.
func (r CleanedRow) Get(field string) string { return r.Fields[field] }

// Result partitions a batch's findings. Cleaned preserves input order and
// excludes rows blocked by errors.
type Result struct {
	Errors   []Issue
	Warnings []Issue
	Cleaned  []CleanedRow
}

// HasBlockingErrors reports whether any row was excluded.
func (r Result) HasBlockingErrors() bool { return len(r.Errors) > 0 }

// dateFields are the mapped fields that normalize as calendar dates.
var dateFields = []string{
	mapping.FieldAppliedDate, mapping.FieldInterviewDate,
	mapping.FieldOfferDate, mapping.FieldResponseDate,
}

// textFields are the mapped fields that only get whitespace cleanup.
var textFields = []string{
	mapping.FieldPosition, mapping.FieldLocation, mapping.FieldNotes,
	mapping.FieldContactName, mapping.FieldSource,
}

// Validator cleans rows against a field mapping. Stateless; safe to reuse
// across imports.
type Validator struct{}

// New returns a Validator.
func New() *Validator { return &Validator{} }

// Validate cleans every row in a single order-preserving pass. Rows missing
// the mandatory company field produce an error and are excluded; everything
// else is normalized in place with warnings.
//
// A missing position is deliberately a warning, not an error: boards that
// omit titles would otherwise silently shrink imports. The row survives with
// an empty position.
func (v *Validator) Validate(rows []tabular.Row, m mapping.Mapping) Result {
	var res Result
	seen := make(map[string]int, len(rows)) // batch dup key -> first row line

	for _, row := range rows {
		cleaned, rowErrs, rowWarns := v.cleanRow(row, m)
		res.Warnings = append(res.Warnings, rowWarns...)
		if len(rowErrs) > 0 {
			res.Errors = append(res.Errors, rowErrs...)
			continue
		}

		// Within-batch duplicate flag: cheap key check, distinct from the
		// cross-field detector that runs after cleaning.
		key := strings.ToLower(cleaned.Get(mapping.FieldCompany)) + "|" +
			strings.ToLower(cleaned.Get(mapping.FieldPosition))
		if first, dup := seen[key]; dup {
			res.Warnings = append(res.Warnings, Issue{
				Row:      row.Line,
				Column:   columnFor(m, mapping.FieldCompany),
				Message:  fmt.Sprintf("possible duplicate of row %d (same company and position)", first),
				Severity: SeverityWarning,
			})
		} else {
			seen[key] = row.Line
		}

		res.Warnings = append(res.Warnings, v.crossFieldChecks(cleaned, m)...)
		res.Cleaned = append(res.Cleaned, cleaned)
	}

	return res
}

// cleanRow normalizes one row. Returned errors block the row.
func (v *Validator) cleanRow(row tabular.Row, m mapping.Mapping) (CleanedRow, []Issue, []Issue) {
	cleaned := CleanedRow{Line: row.Line, Fields: make(map[string]string)}
	var errs, warns []Issue

	value := func(field string) (string, string, bool) {
		col, ok := m.Column(field)
		if !ok {
			return "", "", false
		}
		return row.Get(col), col, true
	}

	// Required: company.
	company, companyCol, mapped := value(mapping.FieldCompany)
	company = CollapseWhitespace(company)
	if !mapped || company == "" {
		errs = append(errs, Issue{
			Row:          row.Line,
			Column:       companyCol,
			Message:      "company is required",
			Severity:     SeverityError,
			SuggestedFix: "add a company name or remove the row",
		})
		return cleaned, errs, warns
	}
	cleaned.Fields[mapping.FieldCompany] = company

	// Soft-required: position. Only flagged when a position column exists;
	// a wholly unmapped position is the mapping engine's suggestion to make.
	if pos, col, ok := value(mapping.FieldPosition); ok && CollapseWhitespace(pos) == "" {
		warns = append(warns, Issue{
			Row:          row.Line,
			Column:       col,
			Message:      "position is empty",
			Severity:     SeverityWarning,
			SuggestedFix: "add a job title so duplicate detection can use it",
		})
	}

	// Plain text fields.
	for _, field := range textFields {
		if raw, _, ok := value(field); ok {
			cleaned.Fields[field] = CollapseWhitespace(raw)
		}
	}

	// Dates.
	for _, field := range dateFields {
		raw, col, ok := value(field)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		iso, parsed := NormalizeDate(raw)
		if !parsed {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      "unrecognized date format, value left as-is",
				Severity:     SeverityWarning,
				SuggestedFix: DateGuidance(raw),
			})
			cleaned.Fields[field] = strings.TrimSpace(raw)
			continue
		}
		if iso != strings.TrimSpace(raw) {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("date normalized from %q", raw),
				Severity:     SeverityWarning,
				SuggestedFix: iso,
			})
		}
		cleaned.Fields[field] = iso
	}

	// Email.
	if raw, col, ok := value(mapping.FieldContactEmail); ok && strings.TrimSpace(raw) != "" {
		email, valid := NormalizeEmail(raw)
		cleaned.Fields[mapping.FieldContactEmail] = email
		if !valid {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("%q does not look like a valid e-mail address", email),
				Severity:     SeverityWarning,
				SuggestedFix: "check for typos or clear the cell",
			})
		}
	}

	// URL.
	if raw, col, ok := value(mapping.FieldJobURL); ok && strings.TrimSpace(raw) != "" {
		cleanedURL, valid := NormalizeURL(raw)
		cleaned.Fields[mapping.FieldJobURL] = cleanedURL
		switch {
		case !valid:
			warns = append(warns, Issue{
				Row:      row.Line,
				Column:   col,
				Message:  fmt.Sprintf("%q does not parse as a URL", strings.TrimSpace(raw)),
				Severity: SeverityWarning,
			})
		case cleanedURL != strings.TrimSpace(raw):
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      "URL was missing a scheme, https:// assumed",
				Severity:     SeverityWarning,
				SuggestedFix: cleanedURL,
			})
		}
	}

	// Fixed vocabularies with defaults.
	if raw, col, ok := value(mapping.FieldStatus); ok && strings.TrimSpace(raw) != "" {
		status, known := NormalizeStatus(raw)
		cleaned.Fields[mapping.FieldStatus] = string(status)
		if !known {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("unrecognized status %q, defaulting to Pending", strings.TrimSpace(raw)),
				Severity:     SeverityWarning,
				SuggestedFix: vocabularyHint(record.Statuses),
			})
		} else if string(status) != strings.TrimSpace(raw) {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("status normalized from %q", raw),
				Severity:     SeverityWarning,
				SuggestedFix: string(status),
			})
		}
	}

	if raw, col, ok := value(mapping.FieldJobType); ok && strings.TrimSpace(raw) != "" {
		jt, known := NormalizeJobType(raw)
		cleaned.Fields[mapping.FieldJobType] = string(jt)
		if !known {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("unrecognized job type %q, defaulting to other", strings.TrimSpace(raw)),
				Severity:     SeverityWarning,
				SuggestedFix: vocabularyHint(record.JobTypes),
			})
		} else if string(jt) != strings.TrimSpace(raw) {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("job type normalized from %q", raw),
				Severity:     SeverityWarning,
				SuggestedFix: string(jt),
			})
		}
	}

	if raw, col, ok := value(mapping.FieldPriority); ok && strings.TrimSpace(raw) != "" {
		p, known := NormalizePriority(raw)
		cleaned.Fields[mapping.FieldPriority] = string(p)
		if !known {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("unrecognized priority %q, defaulting to medium", strings.TrimSpace(raw)),
				Severity:     SeverityWarning,
				SuggestedFix: vocabularyHint(record.Priorities),
			})
		} else if string(p) != strings.TrimSpace(raw) {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("priority normalized from %q", raw),
				Severity:     SeverityWarning,
				SuggestedFix: string(p),
			})
		}
	}

	// Salary.
	if raw, col, ok := value(mapping.FieldSalary); ok && strings.TrimSpace(raw) != "" {
		salary, parsed := NormalizeSalary(raw)
		cleaned.Fields[mapping.FieldSalary] = salary
		if !parsed {
			warns = append(warns, Issue{
				Row:      row.Line,
				Column:   col,
				Message:  fmt.Sprintf("could not parse salary %q, value left as-is", strings.TrimSpace(raw)),
				Severity: SeverityWarning,
			})
		} else if salary != strings.TrimSpace(raw) {
			warns = append(warns, Issue{
				Row:          row.Line,
				Column:       col,
				Message:      fmt.Sprintf("salary normalized from %q", raw),
				Severity:     SeverityWarning,
				SuggestedFix: salary,
			})
		}
	}

	// Lists.
	for _, field := range []string{mapping.FieldTags, mapping.FieldRequirements} {
		if raw, _, ok := value(field); ok && strings.TrimSpace(raw) != "" {
			cleaned.Fields[field] = NormalizeList(raw)
		}
	}

	return cleaned, errs, warns
}

// crossFieldChecks runs business-logic consistency checks on a cleaned row.
// Always warnings: the data may still be what the user meant.
func (v *Validator) crossFieldChecks(row CleanedRow, m mapping.Mapping) []Issue {
	var warns []Issue

	applied := row.Get(mapping.FieldAppliedDate)
	interview := row.Get(mapping.FieldInterviewDate)
	offer := row.Get(mapping.FieldOfferDate)
	status := row.Get(mapping.FieldStatus)

	// ISO strings compare correctly as strings.
	if applied != "" && interview != "" && isISO(applied) && isISO(interview) && interview < applied {
		warns = append(warns, Issue{
			Row:      row.Line,
			Column:   columnFor(m, mapping.FieldInterviewDate),
			Message:  fmt.Sprintf("interview date %s is before applied date %s", interview, applied),
			Severity: SeverityWarning,
		})
	}
	if applied != "" && offer != "" && isISO(applied) && isISO(offer) && offer < applied {
		warns = append(warns, Issue{
			Row:      row.Line,
			Column:   columnFor(m, mapping.FieldOfferDate),
			Message:  fmt.Sprintf("offer date %s is before applied date %s", offer, applied),
			Severity: SeverityWarning,
		})
	}

	switch record.Status(status) {
	case record.StatusInterviewing:
		if interview == "" {
			warns = append(warns, Issue{
				Row:      row.Line,
				Column:   columnFor(m, mapping.FieldStatus),
				Message:  "status is Interviewing but no interview date is set",
				Severity: SeverityWarning,
			})
		}
	case record.StatusOffered, record.StatusAccepted:
		if offer == "" {
			warns = append(warns, Issue{
				Row:      row.Line,
				Column:   columnFor(m, mapping.FieldStatus),
				Message:  fmt.Sprintf("status is %s but no offer date is set", status),
				Severity: SeverityWarning,
			})
		}
	}

	return warns
}

// isISO reports whether a cleaned date actually normalized; unparseable
// values were kept raw and must not be string-compared.
func isISO(s string) bool {
	_, ok := NormalizeDate(s)
	return ok && len(s) == len(isoDate)
}

func columnFor(m mapping.Mapping, field string) string {
	col, _ := m.Column(field)
	return col
}

// vocabularyHint renders an allowed-values suggestion, e.g. for enums.
func vocabularyHint[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return "use one of: " + strings.Join(parts, ", ")
}
