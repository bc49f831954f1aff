package dedupe

import (
	"github.com/google/uuid"

	"github.com/jobdeck/importer/internal/record"
)

// Thresholds tune grouping and resolution suggestions. These are hand-tuned
// values with no derivation; they live in configuration so they can be
// adjusted without a code change.
type Thresholds struct {
	// Group is the pairwise similarity at or above which two rows join the
	// same duplicate group (default 0.65).
	Group float64
	// Merge is the group confidence at or above which an automatic merge is
	// suggested (default 0.9).
	Merge float64
}

// DefaultThresholds returns the tuned grouping thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Group: 0.65, Merge: 0.9}
}

// ResolutionHint is the suggested way to handle a duplicate group.
type ResolutionHint string

const (
	HintMerge          ResolutionHint = "merge"
	HintSkipDuplicates ResolutionHint = "skip_duplicates"
	HintKeepAll        ResolutionHint = "keep_all"
)

// Item is one record under comparison: either a row from the current import
// or a pre-existing stored record supplied for cross-checking.
type Item struct {
	// Ref is the caller's index for this item: the position in the incoming
	// row slice for new items, or in the existing-records slice otherwise.
	Ref      int
	Existing bool
	App      record.Application
}

// Member is an Item placed in a group, tagged with its similarity to the
// group's seed row.
type Member struct {
	Item
	Similarity float64
}

// Group is a cluster of items judged to describe the same application.
type Group struct {
	ID                  string
	Members             []Member
	Confidence          float64
	MatchReasons        []string
	SuggestedResolution ResolutionHint
}

// Detector finds duplicate groups. Stateless apart from its configuration.
type Detector struct {
	weights    Weights
	thresholds Thresholds
}

// NewDetector returns a detector; zero-value weights or thresholds take the
// defaults.
func NewDetector(w Weights, t Thresholds) *Detector {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return &Detector{weights: w, thresholds: t}
}

// Detect groups incoming applications against each other and against any
// pre-existing records. Single-linkage in row order: each unprocessed item
// seeds a group and collects every later unprocessed item whose similarity
// to the seed clears the group threshold. Singletons are dropped.
//
// Pairwise scoring is O(n²) over new+existing; fine for the hundreds-to-
// low-thousands of rows this engine targets, a real constraint beyond that.
// Neither input slice is mutated.
func (d *Detector) Detect(incoming []record.Application, existing []record.Application) []Group {
	items := make([]Item, 0, len(incoming)+len(existing))
	for i, app := range incoming {
		items = append(items, Item{Ref: i, App: app})
	}
	for i, app := range existing {
		items = append(items, Item{Ref: i, Existing: true, App: app})
	}

	processed := make([]bool, len(items))
	var groups []Group

	for i := range items {
		if processed[i] {
			continue
		}
		seed := items[i]
		group := Group{
			Members: []Member{{Item: seed, Similarity: 1}},
		}
		var bestReasons []string

		for j := i + 1; j < len(items); j++ {
			if processed[j] {
				continue
			}
			sim, reasons := Similarity(d.weights, seed.App, items[j].App)
			if sim < d.thresholds.Group {
				continue
			}
			processed[j] = true
			group.Members = append(group.Members, Member{Item: items[j], Similarity: sim})
			if sim > group.Confidence {
				group.Confidence = sim
				bestReasons = reasons
			}
		}
		processed[i] = true

		if len(group.Members) < 2 {
			continue
		}

		group.ID = uuid.NewString()
		group.MatchReasons = bestReasons
		group.SuggestedResolution = d.suggest(group.Confidence)
		groups = append(groups, group)
	}

	return groups
}

// suggest maps group confidence to a resolution hint.
func (d *Detector) suggest(confidence float64) ResolutionHint {
	switch {
	case confidence >= d.thresholds.Merge:
		return HintMerge
	case confidence >= d.thresholds.Group:
		return HintSkipDuplicates
	default:
		return HintKeepAll
	}
}
