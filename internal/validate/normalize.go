package validate

// normalize.go handles the messy reality of user-provided spreadsheet values:
// half a dozen date formats with 2-digit-year variants, free-text statuses in
// two languages, salaries with mixed currency and separator conventions, and
// URLs missing their scheme. Every normalizer is a pure function returning
// the cleaned value plus whether the input was rewritten.

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jobdeck/importer/internal/record"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted: parsed years
// more than this many years in the future are pushed back a century.
var TwoDigitYearPivot = 20

// Date layouts split by year format so the 2-digit pivot only applies where
// it should. ISO first: canonical input must round-trip untouched.
var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006",
		"02.01.2006", "2.1.2006",
		"Jan 2, 2006", "2 Jan 2006",
	}
	twoDigitYearLayouts = []string{
		"01/02/06", "1/2/06", "02.01.06", "2.1.06", "1-2-06",
	}
)

const isoDate = "2006-01-02"

// NormalizeDate parses a date in any accepted layout and returns it in
// YYYY-MM-DD form. ok is false when no layout matches; the caller keeps the
// original value and warns.
func NormalizeDate(s string) (iso string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), true
		}
	}

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > time.Now().Year()+TwoDigitYearPivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format(isoDate), true
		}
	}

	return "", false
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims an e-mail address. valid is false when
// the result still fails the format check.
func NormalizeEmail(s string) (cleaned string, valid bool) {
	cleaned = strings.ToLower(strings.TrimSpace(s))
	return cleaned, emailRegex.MatchString(cleaned)
}

// NormalizeURL trims a URL and prepends https:// when no scheme is present.
// valid is false when the result does not parse to a host.
func NormalizeURL(s string) (cleaned string, valid bool) {
	cleaned = strings.TrimSpace(s)
	if cleaned == "" {
		return "", false
	}
	if !strings.Contains(cleaned, "://") {
		cleaned = "https://" + cleaned
	}
	u, err := url.Parse(cleaned)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return cleaned, false
	}
	return cleaned, true
}

// statusSynonyms maps lowercase free text (English and Turkish) to canonical
// statuses. Canonical names map to themselves so re-validation is a no-op.
var statusSynonyms = map[string]record.Status{
	"pending":      record.StatusPending,
	"beklemede":    record.StatusPending,
	"bekliyor":     record.StatusPending,
	"applied":      record.StatusApplied,
	"submitted":    record.StatusApplied,
	"başvuruldu":   record.StatusApplied,
	"başvurdum":    record.StatusApplied,
	"interviewing": record.StatusInterviewing,
	"interview":    record.StatusInterviewing,
	"screening":    record.StatusInterviewing,
	"görüşme":      record.StatusInterviewing,
	"mülakat":      record.StatusInterviewing,
	"offered":      record.StatusOffered,
	"offer":        record.StatusOffered,
	"teklif":       record.StatusOffered,
	"rejected":     record.StatusRejected,
	"declined":     record.StatusRejected,
	"reddedildi":   record.StatusRejected,
	"red":          record.StatusRejected,
	"accepted":     record.StatusAccepted,
	"kabul":        record.StatusAccepted,
	"kabul edildi": record.StatusAccepted,
	"withdrawn":    record.StatusWithdrawn,
	"vazgeçtim":    record.StatusWithdrawn,
	"geri çekildi": record.StatusWithdrawn,
}

// NormalizeStatus maps free text to a canonical status. known is false for
// unrecognized input; callers default to Pending and warn.
func NormalizeStatus(s string) (record.Status, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statusSynonyms[key]; ok {
		return st, true
	}
	return record.StatusPending, false
}

// jobTypeSynonyms maps lowercase free text to canonical job types.
var jobTypeSynonyms = map[string]record.JobType{
	"full_time":    record.JobFullTime,
	"full time":    record.JobFullTime,
	"fulltime":     record.JobFullTime,
	"full-time":    record.JobFullTime,
	"ft":           record.JobFullTime,
	"tam zamanlı":  record.JobFullTime,
	"part_time":    record.JobPartTime,
	"part time":    record.JobPartTime,
	"parttime":     record.JobPartTime,
	"part-time":    record.JobPartTime,
	"pt":           record.JobPartTime,
	"yarı zamanlı": record.JobPartTime,
	"contract":     record.JobContract,
	"contractor":   record.JobContract,
	"freelance":    record.JobContract,
	"sözleşmeli":   record.JobContract,
	"internship":   record.JobInternship,
	"intern":       record.JobInternship,
	"staj":         record.JobInternship,
	"stajyer":      record.JobInternship,
	"temporary":    record.JobTemporary,
	"temp":         record.JobTemporary,
	"geçici":       record.JobTemporary,
	"other":        record.JobOther,
	"diğer":        record.JobOther,
}

// NormalizeJobType maps free text to a canonical job type. known is false
// for unrecognized input; callers default to other and warn.
func NormalizeJobType(s string) (record.JobType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if jt, ok := jobTypeSynonyms[key]; ok {
		return jt, true
	}
	return record.JobOther, false
}

// prioritySynonyms maps free text and 1–3 numeric scales to priorities.
var prioritySynonyms = map[string]record.Priority{
	"low":    record.PriorityLow,
	"düşük":  record.PriorityLow,
	"3":      record.PriorityLow,
	"medium": record.PriorityMedium,
	"normal": record.PriorityMedium,
	"orta":   record.PriorityMedium,
	"2":      record.PriorityMedium,
	"high":   record.PriorityHigh,
	"yüksek": record.PriorityHigh,
	"urgent": record.PriorityHigh,
	"acil":   record.PriorityHigh,
	"1":      record.PriorityHigh,
}

// NormalizePriority maps free text to a canonical priority. known is false
// for unrecognized input; callers default to medium and warn.
func NormalizePriority(s string) (record.Priority, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := prioritySynonyms[key]; ok {
		return p, true
	}
	return record.PriorityMedium, false
}

// salaryNumber matches one amount: digits with optional separators and an
// optional k-multiplier suffix.
var salaryNumber = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(k)?`)

// thousandsGroup matches a separator followed by a full three-digit group.
var thousandsGroup = regexp.MustCompile(`[.,](\d{3})`)

// NormalizeSalary rewrites a salary string into a canonical display form:
// currency symbol, comma thousands separators, ranges joined by " - "
// (for example "$80,000 - $100,000"). ok is false when no amount could be
// found; the caller keeps the original text and warns.
func NormalizeSalary(s string) (cleaned string, ok bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}

	symbol := detectCurrency(trimmed)

	var amounts []int64
	for _, m := range salaryNumber.FindAllStringSubmatch(trimmed, 2) {
		n, parseOK := parseAmount(m[1])
		if !parseOK {
			continue
		}
		if strings.EqualFold(m[2], "k") {
			n *= 1000
		}
		amounts = append(amounts, n)
	}
	if len(amounts) == 0 {
		return trimmed, false
	}

	parts := make([]string, len(amounts))
	for i, n := range amounts {
		parts[i] = symbol + groupThousands(n)
	}
	return strings.Join(parts, " - "), true
}

// detectCurrency picks a display symbol from markers in the raw string,
// defaulting to "$".
func detectCurrency(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(s, "₺"), strings.Contains(lower, "tl"), strings.Contains(lower, "try"):
		return "₺"
	case strings.Contains(s, "€"), strings.Contains(lower, "eur"):
		return "€"
	case strings.Contains(s, "£"), strings.Contains(lower, "gbp"):
		return "£"
	default:
		return "$"
	}
}

// parseAmount parses one numeric token, treating "." or "," followed by
// exactly three digits as thousands separators and a trailing short group
// as decimals (which are dropped; salaries are displayed whole).
func parseAmount(tok string) (int64, bool) {
	// Strip separators that are clearly thousands groups.
	clean := thousandsGroup.ReplaceAllString(tok, "$1")
	// Anything left after a separator is decimals; drop it.
	if i := strings.IndexAny(clean, ".,"); i >= 0 {
		clean = clean[:i]
	}
	if clean == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// groupThousands formats n with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// CollapseWhitespace trims and collapses internal runs of whitespace.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeList splits a free-text list on commas and semicolons, trims each
// entry, drops empties, and rejoins with ", ".
func NormalizeList(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// SplitList is the inverse boundary of NormalizeList, used at record
// conversion to produce slices.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DateGuidance is the suggested-fix text attached to unparseable dates.
func DateGuidance(value string) string {
	return fmt.Sprintf("could not parse %q, use YYYY-MM-DD, MM/DD/YYYY, or DD.MM.YYYY", value)
}
