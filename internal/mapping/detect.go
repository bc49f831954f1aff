package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// Config tunes the detection thresholds. Zero values take the defaults.
type Config struct {
	// TemplateAdopt is the template score at or above which a template's
	// mapping is adopted outright (default 0.7).
	TemplateAdopt float64
	// TemplateAssist is the template score at or above which high-confidence
	// template fields are kept and the rest fall through to heuristic
	// scoring (default 0.4).
	TemplateAssist float64
	// FieldFloor is the minimum heuristic score for a column to be assigned
	// to a field at all (default 0.3).
	FieldFloor float64
}

func (c Config) withDefaults() Config {
	if c.TemplateAdopt == 0 {
		c.TemplateAdopt = 0.7
	}
	if c.TemplateAssist == 0 {
		c.TemplateAssist = 0.4
	}
	if c.FieldFloor == 0 {
		c.FieldFloor = 0.3
	}
	return c
}

// Per-field confidence a template assignment must exceed to survive when the
// template only partially matches.
const templateFieldKeep = 0.6

// Heuristic signal weights. The sum intentionally exceeds 1: a column that
// fires several signals is clipped, which is the point: multiple agreeing
// signals should saturate confidence, not average it down.
const (
	weightExactKeyword  = 0.45
	weightSubstring     = 0.25
	weightFuzzy         = 0.15
	weightPattern       = 0.10
	weightContent       = 0.25
	lowConfidenceReview = 0.5
)

// Mapping is the detection result: which column feeds each domain field,
// how confident each assignment is, and what needs human attention.
type Mapping struct {
	Columns     map[string]string  // field key -> column header
	Confidence  map[string]float64 // field key -> [0,1]
	Suggestions []string
	Template    string // adopted template name, "" when fully heuristic
}

// Column returns the column header assigned to a field.
func (m Mapping) Column(field string) (string, bool) {
	c, ok := m.Columns[field]
	return c, ok
}

// Engine detects field mappings. Stateless apart from its thresholds.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// DetectColumns maps file headers onto domain fields. samples, when
// provided, are parsed data rows used for content-based scoring; nil is
// fine and skips that signal.
func (e *Engine) DetectColumns(headers []string, samples []map[string]string) Mapping {
	m := Mapping{
		Columns:    make(map[string]string),
		Confidence: make(map[string]float64),
	}

	consumed := make(map[string]bool, len(headers))

	// Stage 1: template match.
	best := bestTemplate(headers)
	switch {
	case best.score >= e.cfg.TemplateAdopt:
		m.Template = best.template.Name
		for field, col := range best.columns {
			m.Columns[field] = col
			m.Confidence[field] = best.fieldCfd[field]
			consumed[col] = true
		}
	case best.score >= e.cfg.TemplateAssist:
		for field, col := range best.columns {
			if best.fieldCfd[field] > templateFieldKeep {
				m.Columns[field] = col
				m.Confidence[field] = best.fieldCfd[field]
				consumed[col] = true
			}
		}
	}

	// Stage 2: heuristic scoring for whatever the template left unmapped.
	columnSamples := collectSamples(headers, samples)
	for _, spec := range fieldSpecs {
		if _, done := m.Columns[spec.Key]; done {
			continue
		}

		bestScore := 0.0
		bestHeader := ""
		for _, h := range headers {
			if h == "" || consumed[h] {
				continue
			}
			s := e.scoreField(spec, h, columnSamples[h])
			if s > bestScore {
				bestScore = s
				bestHeader = h
			}
		}

		if bestScore >= e.cfg.FieldFloor {
			m.Columns[spec.Key] = bestHeader
			m.Confidence[spec.Key] = bestScore
			consumed[bestHeader] = true
		}
	}

	m.Suggestions = e.buildSuggestions(m, headers, consumed)
	return m
}

// scoreField combines the heuristic signals for one field/column pair,
// clipped to [0,1].
func (e *Engine) scoreField(spec fieldSpec, header string, samples []string) float64 {
	h := normalizeHeader(header, false)
	if h == "" {
		return 0
	}

	var score float64
	exact, substr, fuzzy := false, false, 0.0
	for _, kw := range spec.Keywords {
		if h == kw {
			exact = true
		}
		if strings.Contains(h, kw) || strings.Contains(kw, h) {
			substr = true
		}
		if jw := JaroWinkler(h, kw); jw > fuzzy {
			fuzzy = jw
		}
	}

	if exact {
		score += weightExactKeyword
	}
	if substr {
		score += weightSubstring
	}
	score += weightFuzzy * fuzzy
	if spec.Pattern != nil && spec.Pattern.MatchString(header) {
		score += weightPattern
	}
	score += weightContent * contentScore(spec.Content, samples)

	if score > 1 {
		score = 1
	}
	return score
}

// collectSamples pivots row maps into per-column value slices.
func collectSamples(headers []string, samples []map[string]string) map[string][]string {
	if len(samples) == 0 {
		return nil
	}
	out := make(map[string][]string, len(headers))
	for _, row := range samples {
		for _, h := range headers {
			if v, ok := row[h]; ok {
				out[h] = append(out[h], v)
			}
		}
	}
	return out
}

// buildSuggestions explains the parts of the mapping a user should look at:
// unmapped required fields block the import, low-confidence assignments
// deserve review, and unmapped columns are listed for awareness.
func (e *Engine) buildSuggestions(m Mapping, headers []string, consumed map[string]bool) []string {
	var out []string

	for _, spec := range fieldSpecs {
		col, ok := m.Columns[spec.Key]
		if !ok {
			if spec.Required {
				out = append(out, fmt.Sprintf(
					"no column found for required field %q, map it manually before importing", spec.Key))
			}
			continue
		}
		if m.Confidence[spec.Key] < lowConfidenceReview {
			out = append(out, fmt.Sprintf(
				"%q mapped to column %q with low confidence (%.2f), review before importing",
				spec.Key, col, m.Confidence[spec.Key]))
		}
	}

	var unmapped []string
	for _, h := range headers {
		if h != "" && !consumed[h] {
			unmapped = append(unmapped, h)
		}
	}
	if len(unmapped) > 0 {
		sort.Strings(unmapped)
		out = append(out, fmt.Sprintf("unmapped columns will be ignored: %s", strings.Join(unmapped, ", ")))
	}

	return out
}

// bestTemplate scores every built-in template and returns the top match.
func bestTemplate(headers []string) templateMatch {
	var best templateMatch
	for _, tpl := range builtinTemplates {
		m := matchTemplate(tpl, headers)
		if m.score > best.score {
			best = m
		}
	}
	return best
}
