// Package mapping decides which domain field each CSV column represents.
//
// Detection runs in stages: a fast template match against known export
// layouts, then per-field heuristic scoring (keywords, fuzzy similarity,
// header patterns), then content-based scoring over sample values when they
// are available. The result is a confidence-weighted mapping plus
// human-readable suggestions for anything the engine is unsure about.
package mapping

import "regexp"

// Domain field keys. These are the canonical names the validator and
// converter look up; column headers map onto them.
const (
	FieldCompany       = "company"
	FieldPosition      = "position"
	FieldLocation      = "location"
	FieldJobType       = "jobType"
	FieldSalary        = "salary"
	FieldStatus        = "status"
	FieldAppliedDate   = "appliedDate"
	FieldInterviewDate = "interviewDate"
	FieldOfferDate     = "offerDate"
	FieldResponseDate  = "responseDate"
	FieldNotes         = "notes"
	FieldContactName   = "contactName"
	FieldContactEmail  = "contactEmail"
	FieldJobURL        = "jobURL"
	FieldTags          = "tags"
	FieldRequirements  = "requirements"
	FieldPriority      = "priority"
	FieldSource        = "source"
)

// contentKind selects which content scorer applies to a field when sample
// rows are available.
type contentKind int

const (
	contentNone contentKind = iota
	contentDate
	contentEmail
	contentURL
	contentCurrency
	contentStatus
	contentPriority
)

// fieldSpec drives heuristic scoring for one domain field.
type fieldSpec struct {
	Key      string
	Required bool
	Keywords []string // lowercase; first entry is the preferred display name
	Pattern  *regexp.Regexp
	Content  contentKind
}

// fieldSpecs lists every domain field in priority order. Earlier fields
// consume columns first, which is the tie-break: company must never lose its
// column to a lower-priority field.
var fieldSpecs = []fieldSpec{
	{
		Key:      FieldCompany,
		Required: true,
		Keywords: []string{"company", "company name", "employer", "organization", "firm", "şirket", "firma", "kurum"},
		Pattern:  regexp.MustCompile(`(?i)company|employer|şirket|firma`),
	},
	{
		Key:      FieldPosition,
		Keywords: []string{"position", "job title", "title", "role", "pozisyon", "unvan", "görev"},
		Pattern:  regexp.MustCompile(`(?i)position|title|role|pozisyon`),
	},
	{
		Key:      FieldLocation,
		Keywords: []string{"location", "city", "place", "office", "konum", "şehir", "lokasyon"},
		Pattern:  regexp.MustCompile(`(?i)location|city|konum|şehir`),
	},
	{
		Key:      FieldJobType,
		Keywords: []string{"job type", "employment type", "work type", "type", "çalışma şekli", "çalışma türü"},
		Pattern:  regexp.MustCompile(`(?i)(job|employment|work|çalışma)\s*(type|şekli|türü)`),
	},
	{
		Key:      FieldSalary,
		Keywords: []string{"salary", "pay", "compensation", "wage", "maaş", "ücret"},
		Pattern:  regexp.MustCompile(`(?i)salary|compensation|maaş|ücret`),
		Content:  contentCurrency,
	},
	{
		Key:      FieldStatus,
		Keywords: []string{"status", "application status", "stage", "durum", "aşama"},
		Pattern:  regexp.MustCompile(`(?i)status|stage|durum`),
		Content:  contentStatus,
	},
	{
		Key:      FieldAppliedDate,
		Keywords: []string{"applied date", "date applied", "application date", "applied", "başvuru tarihi"},
		Pattern:  regexp.MustCompile(`(?i)appl\w*[\s_-]*date|date[\s_-]*appl|başvuru`),
		Content:  contentDate,
	},
	{
		Key:      FieldInterviewDate,
		Keywords: []string{"interview date", "interview", "görüşme tarihi", "mülakat tarihi"},
		Pattern:  regexp.MustCompile(`(?i)interview|görüşme|mülakat`),
		Content:  contentDate,
	},
	{
		Key:      FieldOfferDate,
		Keywords: []string{"offer date", "offer", "teklif tarihi"},
		Pattern:  regexp.MustCompile(`(?i)offer|teklif`),
		Content:  contentDate,
	},
	{
		Key:      FieldResponseDate,
		Keywords: []string{"response date", "response", "reply date", "yanıt tarihi"},
		Pattern:  regexp.MustCompile(`(?i)response|reply|yanıt`),
		Content:  contentDate,
	},
	{
		Key:      FieldNotes,
		Keywords: []string{"notes", "comments", "description", "remarks", "notlar", "açıklama"},
		Pattern:  regexp.MustCompile(`(?i)notes?|comments?|açıklama`),
	},
	{
		Key:      FieldContactName,
		Keywords: []string{"contact", "contact name", "recruiter", "hiring manager", "iletişim", "yetkili"},
		Pattern:  regexp.MustCompile(`(?i)contact|recruiter|iletişim`),
	},
	{
		Key:      FieldContactEmail,
		Keywords: []string{"email", "e-mail", "contact email", "mail", "e-posta", "eposta"},
		Pattern:  regexp.MustCompile(`(?i)e-?mail|e-?posta`),
		Content:  contentEmail,
	},
	{
		Key:      FieldJobURL,
		Keywords: []string{"url", "link", "job url", "job link", "posting", "ilan linki"},
		Pattern:  regexp.MustCompile(`(?i)url|link|ilan`),
		Content:  contentURL,
	},
	{
		Key:      FieldTags,
		Keywords: []string{"tags", "labels", "keywords", "etiketler"},
		Pattern:  regexp.MustCompile(`(?i)tags?|labels?|etiket`),
	},
	{
		Key:      FieldRequirements,
		Keywords: []string{"requirements", "skills", "qualifications", "gereksinimler", "nitelikler"},
		Pattern:  regexp.MustCompile(`(?i)requirements?|skills?|qualifications?`),
	},
	{
		Key:      FieldPriority,
		Keywords: []string{"priority", "importance", "öncelik"},
		Pattern:  regexp.MustCompile(`(?i)priority|öncelik`),
		Content:  contentPriority,
	},
	{
		Key:      FieldSource,
		Keywords: []string{"source", "job board", "site", "found via", "kaynak"},
		Pattern:  regexp.MustCompile(`(?i)source|board|kaynak`),
	},
}

// RequiredFields lists the fields a usable mapping must assign.
func RequiredFields() []string {
	var out []string
	for _, s := range fieldSpecs {
		if s.Required {
			out = append(out, s.Key)
		}
	}
	return out
}
