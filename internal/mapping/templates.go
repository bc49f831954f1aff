package mapping

// templates.go holds the known export layouts. When a file's headers line up
// with one of these, the template's mapping is adopted without running the
// per-column heuristics, which keeps detection stable for the sources users
// actually upload from.

import (
	"strings"
	"unicode"
)

// Template is a named, versioned field-mapping skeleton for a known source.
type Template struct {
	Name    string
	Version int
	Source  string
	Turkish bool              // use Turkish case folding when comparing headers
	Headers map[string]string // field key -> expected column header
	Sample  map[string]string // example row keyed by expected header
}

// Weighting for template scoring: required fields count double.
const (
	requiredFieldWeight = 2.0
	optionalFieldWeight = 1.0

	exactHeaderScore     = 1.0
	substringHeaderScore = 0.7
)

// builtinTemplates lists known export layouts, checked in order.
var builtinTemplates = []Template{
	{
		Name:    "indeed-export",
		Version: 2,
		Source:  "Indeed",
		Headers: map[string]string{
			FieldCompany:     "Company Name",
			FieldPosition:    "Job Title",
			FieldLocation:    "Location",
			FieldStatus:      "Status",
			FieldAppliedDate: "Date Applied",
		},
		Sample: map[string]string{
			"Company Name": "Acme Corp",
			"Job Title":    "Software Engineer",
			"Location":     "Remote",
			"Status":       "Applied",
			"Date Applied": "2024-01-15",
		},
	},
	{
		Name:    "linkedin-export",
		Version: 1,
		Source:  "LinkedIn",
		Headers: map[string]string{
			FieldCompany:     "Company Name",
			FieldPosition:    "Job Title",
			FieldLocation:    "Location",
			FieldJobURL:      "Job Url",
			FieldAppliedDate: "Date Saved",
		},
		Sample: map[string]string{
			"Company Name": "Globex",
			"Job Title":    "Product Designer",
			"Location":     "Berlin, Germany",
			"Job Url":      "https://www.linkedin.com/jobs/view/123",
			"Date Saved":   "1/15/2024",
		},
	},
	{
		Name:    "kariyernet-tr",
		Version: 1,
		Source:  "Kariyer.net",
		Turkish: true,
		Headers: map[string]string{
			FieldCompany:     "Şirket",
			FieldPosition:    "Pozisyon",
			FieldLocation:    "Şehir",
			FieldStatus:      "Durum",
			FieldAppliedDate: "Başvuru Tarihi",
			FieldSalary:      "Ücret",
		},
		Sample: map[string]string{
			"Şirket":         "Arçelik",
			"Pozisyon":       "Yazılım Mühendisi",
			"Şehir":          "İstanbul",
			"Durum":          "Başvuruldu",
			"Başvuru Tarihi": "15.01.2024",
			"Ücret":          "45.000 TL",
		},
	},
	{
		Name:    "generic-tracker",
		Version: 1,
		Source:  "Spreadsheet",
		Headers: map[string]string{
			FieldCompany:     "Company",
			FieldPosition:    "Position",
			FieldLocation:    "Location",
			FieldStatus:      "Status",
			FieldAppliedDate: "Applied Date",
			FieldNotes:       "Notes",
		},
		Sample: map[string]string{
			"Company":      "Initech",
			"Position":     "Backend Engineer",
			"Location":     "Austin, TX",
			"Status":       "Interviewing",
			"Applied Date": "2024-02-01",
			"Notes":        "Referred by Dana",
		},
	},
}

// Templates returns the built-in templates.
func Templates() []Template { return builtinTemplates }

// templateMatch is the result of scoring one template against file headers.
type templateMatch struct {
	template Template
	score    float64
	columns  map[string]string  // field key -> actual file header
	fieldCfd map[string]float64 // field key -> per-field confidence
}

// matchTemplate scores a template against the file headers: each expected
// header contributes its best match score (exact 1.0, substring 0.7) times
// the field weight, normalized by total weight.
func matchTemplate(tpl Template, headers []string) templateMatch {
	m := templateMatch{
		template: tpl,
		columns:  make(map[string]string),
		fieldCfd: make(map[string]float64),
	}

	var totalWeight, earned float64
	for field, expected := range tpl.Headers {
		weight := optionalFieldWeight
		if isRequiredField(field) {
			weight = requiredFieldWeight
		}
		totalWeight += weight

		bestScore := 0.0
		bestHeader := ""
		for _, h := range headers {
			s := headerMatchScore(h, expected, tpl.Turkish)
			if s > bestScore {
				bestScore = s
				bestHeader = h
			}
		}
		if bestScore > 0 {
			m.columns[field] = bestHeader
			m.fieldCfd[field] = bestScore
			earned += weight * bestScore
		}
	}

	if totalWeight > 0 {
		m.score = earned / totalWeight
	}
	return m
}

// headerMatchScore compares a file header to a template's expected header.
func headerMatchScore(header, expected string, turkish bool) float64 {
	h := normalizeHeader(header, turkish)
	e := normalizeHeader(expected, turkish)
	if h == "" || e == "" {
		return 0
	}
	if h == e {
		return exactHeaderScore
	}
	if strings.Contains(h, e) || strings.Contains(e, h) {
		return substringHeaderScore
	}
	return 0
}

// normalizeHeader lowercases a header for comparison. Turkish templates use
// the Turkish case table so that İ folds to i and I folds to ı; without it
// "ŞİRKET" never matches "şirket".
func normalizeHeader(s string, turkish bool) string {
	s = strings.TrimSpace(s)
	if turkish {
		return strings.ToLowerSpecial(unicode.TurkishCase, s)
	}
	return strings.ToLower(s)
}

func isRequiredField(key string) bool {
	for _, s := range fieldSpecs {
		if s.Key == key {
			return s.Required
		}
	}
	return false
}
