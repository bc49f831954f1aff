// Package encoding detects the character encoding of uploaded CSV bytes and
// decodes them to UTF-8 text.
//
// Detection is deliberately small-scale: the product's user base produces
// files in UTF-8, the Latin-1 family, Windows-1252, or a Turkish code page
// (Windows-1254 / ISO-8859-9). Each candidate is scored against a bounded
// prefix of the file and the best scorer wins; ties fall back to a fixed
// priority with UTF-8 first. Detection never fails: garbage input gets a
// UTF-8 default so the pipeline can continue with a lossy decode.
package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Candidate is one scored encoding guess.
type Candidate struct {
	Name          string
	Confidence    float64
	DecodedSample string
}

// Candidate encoding names. Order here is the tie-break and fallback
// priority: UTF-8, then the locale-specific pages, then plain Latin-1.
const (
	UTF8        = "utf-8"
	Windows1254 = "windows-1254"
	ISO88599    = "iso-8859-9"
	Windows1252 = "windows-1252"
	ISO88591    = "iso-8859-1"
)

var candidatePriority = []string{UTF8, Windows1254, ISO88599, Windows1252, ISO88591}

var charmaps = map[string]*charmap.Charmap{
	Windows1254: charmap.Windows1254,
	ISO88599:    charmap.ISO8859_9,
	Windows1252: charmap.Windows1252,
	ISO88591:    charmap.ISO8859_1,
}

// utf8BOM is the UTF-8 byte order mark commonly added by Windows tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Confidence tuning. floorConfidence is the score below which detection
// gives up and defaults to UTF-8 at defaultConfidence.
const (
	floorConfidence   = 0.3
	defaultConfidence = 0.5
)

// Turkish letters outside ASCII, the strongest signal for the Turkish pages.
const turkishLetters = "çğıöşüÇĞİÖŞÜ"

// Marker words checked as whole lowercase tokens in the decoded sample.
var turkishMarkers = []string{
	"çalışma", "başvuru", "görüşme", "mülakat", "şirket",
	"pozisyon", "ücret", "maaş", "tarih", "durum", "iş",
}

var westernMarkers = []string{
	"café", "résumé", "münchen", "zürich", "españa", "montréal", "société",
}

// Detector scores a byte sample against the fixed candidate set.
// The zero value is not usable; construct with NewDetector.
type Detector struct {
	sampleBytes int
}

// NewDetector returns a detector that inspects at most sampleBytes of input.
// Values <= 0 fall back to 8 KiB.
func NewDetector(sampleBytes int) *Detector {
	if sampleBytes <= 0 {
		sampleBytes = 8 * 1024
	}
	return &Detector{sampleBytes: sampleBytes}
}

// Detect scores every candidate encoding against a bounded prefix of data
// and returns the winner. Never returns an error: when no candidate clears
// the confidence floor the result is UTF-8 at a fixed moderate confidence.
func (d *Detector) Detect(data []byte) Candidate {
	sample := data
	if len(sample) > d.sampleBytes {
		sample = sample[:d.sampleBytes]
	}

	best := Candidate{Name: UTF8, Confidence: 0}
	for _, name := range candidatePriority {
		c := scoreCandidate(name, sample)
		// Strictly greater keeps the earlier (higher-priority) candidate on ties.
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	if best.Confidence < floorConfidence {
		decoded, _ := decodeStrict(UTF8, sample)
		if decoded == "" {
			decoded = string(bytes.ToValidUTF8(sample, []byte("?")))
		}
		return Candidate{Name: UTF8, Confidence: defaultConfidence, DecodedSample: decoded}
	}
	return best
}

// Decode decodes data under the named encoding, strictly: bytes that do not
// map under the encoding are an error, not a substitution.
func (d *Detector) Decode(data []byte, name string) (string, error) {
	return decodeStrict(name, data)
}

// DecodeBest decodes the full file using the detected encoding, falling back
// through the remaining candidates in priority order on failure, and as a
// last resort performing a lossy UTF-8 decode. It never fails. The decoded
// text has any BOM stripped and the mojibake repair table applied.
func (d *Detector) DecodeBest(data []byte, detected string) string {
	tried := map[string]bool{}
	order := append([]string{detected}, candidatePriority...)
	for _, name := range order {
		if tried[name] {
			continue
		}
		tried[name] = true
		if text, err := decodeStrict(name, data); err == nil {
			return RepairMojibake(text)
		}
	}
	// Lossy last resort: invalid sequences become replacement characters.
	text := string(bytes.ToValidUTF8(bytes.TrimPrefix(data, utf8BOM), []byte(string(utf8.RuneError))))
	return RepairMojibake(text)
}

// decodeStrict decodes data under name, failing on any unmappable byte.
func decodeStrict(name string, data []byte) (string, error) {
	switch name {
	case UTF8:
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8 sequence")
		}
		return string(data), nil
	default:
		cm, ok := charmaps[name]
		if !ok {
			return "", fmt.Errorf("unknown encoding %q", name)
		}
		decoded, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", name, err)
		}
		// x/text substitutes U+FFFD for bytes the code page leaves
		// undefined; treat that as a hard failure for strict mode.
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			return "", fmt.Errorf("decode %s: unmapped byte", name)
		}
		return string(decoded), nil
	}
}

// scoreCandidate computes the confidence heuristic for one encoding.
func scoreCandidate(name string, sample []byte) Candidate {
	decoded, err := decodeStrict(name, sample)
	if err != nil {
		return Candidate{Name: name, Confidence: 0}
	}

	var score float64
	switch name {
	case UTF8:
		score = 0.5
		if bytes.HasPrefix(sample, utf8BOM) {
			score += 0.3
		}
		score += 0.15 * multiByteFraction(sample)
		if looksLikeCSV(decoded) {
			score += 0.05
		}
	case Windows1254, ISO88599:
		// Base sits just under the floor so that byte streams with no
		// locale evidence fall through to the UTF-8 default.
		score = 0.25
		score += 0.35 * letterDensity(decoded, turkishLetters)
		score += markerBonus(decoded, turkishMarkers)
	default: // Windows-1252 / ISO-8859-1
		score = 0.25
		score += 0.35 * extendedLatinDensity(decoded)
		score += markerBonus(decoded, westernMarkers)
	}

	if score > 1 {
		score = 1
	}
	return Candidate{Name: name, Confidence: score, DecodedSample: decoded}
}

// multiByteFraction is the fraction of non-ASCII bytes that sit inside valid
// multi-byte UTF-8 sequences, relative to total length. ASCII-only input
// scores zero, which is correct: it carries no evidence beyond the base.
func multiByteFraction(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	multi := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r != utf8.RuneError && size > 1 {
			multi += size
		}
		if size == 0 {
			break
		}
		i += size
	}
	return float64(multi) / float64(len(data))
}

// looksLikeCSV reports whether the decoded sample has at least two lines
// with a matching nonzero comma count, the shape of a delimited header plus
// data rows.
func looksLikeCSV(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return false
	}
	first := strings.Count(lines[0], ",")
	if first == 0 {
		return false
	}
	matching := 0
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ",") == first {
			matching++
		}
	}
	return matching >= 1
}

// letterDensity is the share of letter runes drawn from set.
func letterDensity(text, set string) float64 {
	letters, hits := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if strings.ContainsRune(set, r) {
			hits++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(hits) / float64(letters)
}

// extendedLatinDensity is the share of letter runes in the Latin-1
// supplement range (accented Western European letters).
func extendedLatinDensity(text string) float64 {
	letters, hits := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r >= 0x00C0 && r <= 0x00FF {
			hits++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(hits) / float64(letters)
}

// markerBonus adds 0.05 per marker word found as a whole token, capped at 0.2.
func markerBonus(text string, markers []string) float64 {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	present := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		present[t] = true
	}
	var bonus float64
	for _, m := range markers {
		if present[m] {
			bonus += 0.05
		}
	}
	if bonus > 0.2 {
		bonus = 0.2
	}
	return bonus
}
