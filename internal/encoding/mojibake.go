package encoding

// mojibake.go repairs text that was UTF-8 encoded but decoded as Latin-1 /
// Windows-1252 somewhere upstream (typically by a spreadsheet tool before
// the user re-exported). The damage is deterministic, so a fixed ordered
// substitution table undoes the common cases.
//
// Order is a real invariant: longer, more specific garbled sequences must be
// replaced before their prefixes ("â€™" before any bare "â€" handling, "Ã‡"
// before "Ã"-prefixed singles would ever be considered). The table is data,
// not code; extending it is an entry, not a branch.

import "strings"

type repair struct {
	garbled string
	fixed   string
}

// repairTable lists substitutions in application order, most specific first.
var repairTable = []repair{
	// Smart punctuation (Windows-1252 artifacts of U+2018..U+2026).
	{"â€™", "’"},
	{"â€˜", "‘"},
	{"â€œ", "“"},
	{"â€", "”"},
	{"â€“", "–"},
	{"â€”", "—"},
	{"â€¦", "…"},

	// Turkish letters, uppercase forms first where the garbled form is longer.
	{"Ä°", "İ"},
	{"Ä±", "ı"},
	{"Äž", "Ğ"},
	{"ÄŸ", "ğ"},
	{"Åž", "Ş"},
	{"ÅŸ", "ş"},
	{"Ã‡", "Ç"},
	{"Ã§", "ç"},
	{"Ã–", "Ö"},
	{"Ã¶", "ö"},
	{"Ãœ", "Ü"},
	{"Ã¼", "ü"},

	// Common Western European accents.
	{"Ã©", "é"},
	{"Ã¨", "è"},
	{"Ã¡", "á"},
	{"Ã¤", "ä"},
	{"Ã£", "ã"},
	{"Ã±", "ñ"},

	// Non-breaking space read as Â + space.
	{"Â ", " "},
	{"Â»", "»"},
	{"Â«", "«"},
}

// RepairMojibake applies the substitution table in order and returns the
// repaired text. Text without artifacts passes through unchanged.
func RepairMojibake(text string) string {
	for _, r := range repairTable {
		if strings.Contains(text, r.garbled) {
			text = strings.ReplaceAll(text, r.garbled, r.fixed)
		}
	}
	return text
}
