// Package dedupe groups applications that likely describe the same
// real-world job application and suggests how to reconcile them.
//
// Scoring is a weighted sum over whatever signals both sides actually have;
// absent fields do not count against a pair. The weights and thresholds are
// hand-tuned, so they are configuration, not constants baked into logic.
package dedupe

import (
	"strings"
	"time"

	"github.com/jobdeck/importer/internal/record"
)

// Weights assigns relative importance to each pairwise signal. Only signals
// present on both sides participate; the total is renormalized over the
// participating weight.
type Weights struct {
	Company     float64
	Position    float64
	Location    float64
	JobURL      float64
	Email       float64
	AppliedDate float64

	// DateDecayDays is how many days apart two applied dates can be before
	// the proximity signal reaches zero. Zero means the default.
	DateDecayDays int
}

// DefaultWeights returns the tuned signal weights.
func DefaultWeights() Weights {
	return Weights{
		Company:       0.35,
		Position:      0.30,
		Location:      0.10,
		JobURL:        0.05,
		Email:         0.10,
		AppliedDate:   0.10,
		DateDecayDays: defaultDateDecayDays,
	}
}

const defaultDateDecayDays = 7

// reasonFloor is the per-signal score above which the signal is reported as
// a human-readable match reason.
const reasonFloor = 0.7

// Similarity scores two applications in [0,1] and lists the reasons for the
// match, ordered by signal weight. Symmetric: Similarity(a,b) equals
// Similarity(b,a).
func Similarity(w Weights, a, b record.Application) (float64, []string) {
	type signal struct {
		weight float64
		score  float64
		ok     bool
		reason string
	}

	companyScore := stringSimilarity(a.Company, b.Company)
	positionScore := stringSimilarity(a.Position, b.Position)
	locationScore := stringSimilarity(a.Location, b.Location)
	urlScore := binaryMatch(a.JobURL, b.JobURL)
	emailScore := binaryMatch(a.ContactEmail, b.ContactEmail)

	decay := w.DateDecayDays
	if decay <= 0 {
		decay = defaultDateDecayDays
	}
	dateScore := dateProximity(a.AppliedDate, b.AppliedDate, decay)

	signals := []signal{
		{w.Company, companyScore, bothSet(a.Company, b.Company), "company names match"},
		{w.Position, positionScore, bothSet(a.Position, b.Position), "position titles match"},
		{w.Location, locationScore, bothSet(a.Location, b.Location), "locations match"},
		{w.Email, emailScore, bothSet(a.ContactEmail, b.ContactEmail), "same contact e-mail"},
		{w.AppliedDate, dateScore, bothSet(a.AppliedDate, b.AppliedDate), "applied around the same date"},
		{w.JobURL, urlScore, bothSet(a.JobURL, b.JobURL), "same job URL"},
	}

	var total, earned float64
	var reasons []string
	for _, s := range signals {
		if !s.ok {
			continue
		}
		total += s.weight
		earned += s.weight * s.score
		if s.score >= reasonFloor {
			reasons = append(reasons, s.reason)
		}
	}

	if total == 0 {
		return 0, nil
	}
	return earned / total, reasons
}

func bothSet(a, b string) bool {
	return strings.TrimSpace(a) != "" && strings.TrimSpace(b) != ""
}

// stringSimilarity compares two values: normalized exact match scores 1.0,
// containment scores proportional to the length ratio, anything else falls
// back to Levenshtein similarity.
func stringSimilarity(a, b string) float64 {
	na := normalizeValue(a)
	nb := normalizeValue(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		short, long := len(nb), len(na)
		if short > long {
			short, long = long, short
		}
		return float64(short) / float64(long) * 0.9
	}
	return levenshteinSimilarity(na, nb)
}

func normalizeValue(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func binaryMatch(a, b string) float64 {
	if !bothSet(a, b) {
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 1
	}
	return 0
}

// dateProximity gives full credit for identical applied dates, decaying
// linearly to zero at decayDays apart. Unparseable values score zero.
func dateProximity(a, b string, decayDays int) float64 {
	if !bothSet(a, b) {
		return 0
	}
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return 0
	}
	days := ta.Sub(tb).Hours() / 24
	if days < 0 {
		days = -days
	}
	if days >= float64(decayDays) {
		return 0
	}
	return 1 - days/float64(decayDays)
}

// levenshteinSimilarity converts edit distance to a [0,1] score:
// (maxLen - distance) / maxLen.
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	d := levenshtein(ra, rb)
	return float64(maxLen-d) / float64(maxLen)
}

// levenshtein computes edit distance with the two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
