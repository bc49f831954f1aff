package mapping

// content.go scores sample column values against the data shape a field
// expects. Header text alone is often ambiguous ("Date", "Info", column A/B
// exports); the values themselves usually are not.

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailValueRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	urlValueRegex   = regexp.MustCompile(`(?i)^(https?://|www\.)\S+`)
)

// currencyMarkers are substrings that suggest a salary value.
var currencyMarkers = []string{"$", "€", "£", "₺", "tl", "usd", "eur", "try", "k"}

// statusVocabulary covers canonical statuses and the common free-text and
// Turkish forms users type. The validator owns the full synonym table; this
// list only needs to recognize a status column when it sees one.
var statusVocabulary = []string{
	"pending", "applied", "interviewing", "interview", "offered", "offer",
	"rejected", "accepted", "withdrawn", "screening",
	"beklemede", "başvuruldu", "başvurdum", "görüşme", "mülakat",
	"teklif", "reddedildi", "kabul", "vazgeçtim",
}

var priorityVocabulary = []string{
	"high", "medium", "low", "1", "2", "3", "yüksek", "orta", "düşük",
}

// contentDateLayouts are the formats the content scorer recognizes. The
// validator's date normalizer accepts the same family.
var contentDateLayouts = []string{
	"2006-01-02", "01/02/2006", "1/2/2006", "02.01.2006", "2.1.2006",
	"01-02-2006", "01/02/06", "1/2/06", "02.01.06",
}

// contentScore returns the fraction of non-empty sample values that look
// like the field's expected data shape, or 0 when the kind has no scorer or
// no samples exist.
func contentScore(kind contentKind, samples []string) float64 {
	if kind == contentNone {
		return 0
	}
	total, hits := 0, 0
	for _, raw := range samples {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		total++
		if matchesKind(kind, v) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func matchesKind(kind contentKind, v string) bool {
	switch kind {
	case contentDate:
		return parseableDate(v)
	case contentEmail:
		return emailValueRegex.MatchString(strings.ToLower(v))
	case contentURL:
		return urlValueRegex.MatchString(v)
	case contentCurrency:
		lower := strings.ToLower(v)
		for _, m := range currencyMarkers {
			if strings.Contains(lower, m) {
				return true
			}
		}
		return false
	case contentStatus:
		lower := strings.ToLower(v)
		for _, s := range statusVocabulary {
			if lower == s {
				return true
			}
		}
		return false
	case contentPriority:
		lower := strings.ToLower(v)
		for _, p := range priorityVocabulary {
			if lower == p {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func parseableDate(v string) bool {
	for _, layout := range contentDateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
