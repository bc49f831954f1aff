package dedupe

// merge.go synthesizes a single record from a duplicate group and applies
// caller-chosen resolutions to the incoming row set.

import (
	"strings"

	"github.com/jobdeck/importer/internal/record"
)

// Action is what the caller decided to do about a duplicate pair.
type Action string

const (
	ActionMerge    Action = "merge"     // combine into primary, drop secondary
	ActionSkip     Action = "skip"      // drop secondary, leave primary as-is
	ActionUpdate   Action = "update"    // overwrite primary with merged payload
	ActionKeepBoth Action = "keep_both" // import both unchanged
)

// Resolution is one reconciliation decision. Primary and Secondary are
// indexes into the incoming row slice passed to Apply.
type Resolution struct {
	Action    Action
	Primary   int
	Secondary int
	// Merged, when set, replaces the primary's data for merge/update.
	Merged *record.Application
}

// MergePreview synthesizes one record from every member of a group:
// non-empty beats empty, later dates beat earlier, the more advanced status
// wins, longer free text wins, and list fields union case-insensitively with
// the first-seen casing kept.
func MergePreview(g Group) record.Application {
	var out record.Application
	for _, m := range g.Members {
		out = mergeInto(out, m.App)
	}
	return out
}

func mergeInto(base, next record.Application) record.Application {
	base.Company = firstNonEmpty(base.Company, next.Company)
	base.Location = firstNonEmpty(base.Location, next.Location)
	base.Salary = firstNonEmpty(base.Salary, next.Salary)
	base.ContactName = firstNonEmpty(base.ContactName, next.ContactName)
	base.ContactEmail = firstNonEmpty(base.ContactEmail, next.ContactEmail)
	base.JobURL = firstNonEmpty(base.JobURL, next.JobURL)
	base.Source = firstNonEmpty(base.Source, next.Source)

	if next.JobType != "" && (base.JobType == "" || base.JobType == record.JobOther) {
		base.JobType = next.JobType
	}
	if next.Priority != "" && base.Priority == "" {
		base.Priority = next.Priority
	}

	// Free text: more detail wins.
	base.Position = longer(base.Position, next.Position)
	base.Notes = longer(base.Notes, next.Notes)

	// Dates: later wins.
	base.AppliedDate = laterDate(base.AppliedDate, next.AppliedDate)
	base.InterviewDate = laterDate(base.InterviewDate, next.InterviewDate)
	base.OfferDate = laterDate(base.OfferDate, next.OfferDate)
	base.ResponseDate = laterDate(base.ResponseDate, next.ResponseDate)

	// Status: further along wins.
	if next.Status != "" && (base.Status == "" || next.Status.Rank() > base.Status.Rank()) {
		base.Status = next.Status
	}

	base.Tags = unionLists(base.Tags, next.Tags)
	base.Requirements = unionLists(base.Requirements, next.Requirements)

	return base
}

// Apply executes resolutions against the incoming rows and returns the
// surviving set. Removals happen in descending index order so earlier
// indexes stay valid within the pass. Re-applying a resolution whose
// secondary row is already resolved is a no-op, which makes the whole
// operation idempotent.
func Apply(rows []record.Application, resolutions []Resolution) []record.Application {
	out := make([]record.Application, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}

	removed := make(map[int]bool)
	applied := make(map[Resolution]bool)

	for _, res := range resolutions {
		key := Resolution{Action: res.Action, Primary: res.Primary, Secondary: res.Secondary}
		if applied[key] {
			continue
		}
		if res.Primary < 0 || res.Primary >= len(out) || removed[res.Primary] {
			continue
		}

		switch res.Action {
		case ActionMerge:
			if res.Secondary < 0 || res.Secondary >= len(out) || removed[res.Secondary] {
				continue
			}
			if res.Merged != nil {
				out[res.Primary] = res.Merged.Clone()
			} else {
				out[res.Primary] = mergeInto(out[res.Primary], out[res.Secondary])
			}
			removed[res.Secondary] = true
		case ActionUpdate:
			if res.Merged != nil {
				out[res.Primary] = res.Merged.Clone()
			}
		case ActionSkip:
			if res.Secondary < 0 || res.Secondary >= len(out) || removed[res.Secondary] {
				continue
			}
			removed[res.Secondary] = true
		case ActionKeepBoth:
			// Nothing to do.
		}
		applied[key] = true
	}

	if len(removed) == 0 {
		return out
	}

	// Compact, deleting from the highest index down.
	for i := len(out) - 1; i >= 0; i-- {
		if removed[i] {
			out = append(out[:i], out[i+1:]...)
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func longer(a, b string) string {
	if len(strings.TrimSpace(b)) > len(strings.TrimSpace(a)) {
		return b
	}
	return firstNonEmpty(a, b)
}

func laterDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	// ISO dates order lexically.
	if b > a {
		return b
	}
	return a
}

// unionLists merges two lists, dropping case-insensitive repeats while
// keeping the casing of the first occurrence.
func unionLists(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
