// Package importer orchestrates the import pipeline: detect encoding, decode,
// parse, map columns, validate, find duplicates, and convert rows into
// application records.
//
// The pipeline is single-threaded and cooperative. Conversion runs in batches
// with a short yield between them, and the context is checked at every stage
// boundary so a caller can cancel a long run.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobdeck/importer/internal/config"
	"github.com/jobdeck/importer/internal/dedupe"
	"github.com/jobdeck/importer/internal/encoding"
	"github.com/jobdeck/importer/internal/logging"
	"github.com/jobdeck/importer/internal/mapping"
	"github.com/jobdeck/importer/internal/record"
	"github.com/jobdeck/importer/internal/tabular"
	"github.com/jobdeck/importer/internal/validate"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage string

const (
	StageDetecting     Stage = "detecting"
	StageDecoding      Stage = "decoding"
	StageParsing       Stage = "parsing"
	StageMapping       Stage = "mapping"
	StageValidating    Stage = "validating"
	StageDeduplicating Stage = "deduplicating"
	StageConverting    Stage = "converting"
)

// Coarse progress percentages at the end of each stage. Converting fills the
// remaining range per batch.
const (
	pctDetecting     = 5
	pctDecoding      = 12
	pctParsing       = 25
	pctMapping       = 40
	pctValidating    = 60
	pctDeduplicating = 75
	pctDone          = 100
)

// Progress is one observational progress report. Current and Total are row
// counts, populated only during conversion.
type Progress struct {
	Stage   Stage
	Percent int
	Message string
	Current int
	Total   int
}

// ProgressFunc receives progress reports. It must not block; the pipeline
// calls it inline.
type ProgressFunc func(Progress)

// Options tunes a single run.
type Options struct {
	// Existing records are compared against incoming rows for cross-import
	// duplicate detection.
	Existing []record.Application

	// Progress, when set, receives stage reports.
	Progress ProgressFunc

	// SkipValidation imports raw mapped values without cleaning. Rows with
	// an empty company still cannot become records; they are counted skipped.
	SkipValidation bool

	// SkipDedupe disables duplicate detection.
	SkipDedupe bool
}

// Summary is the caller-facing outcome of a run.
type Summary struct {
	TotalRows         int
	SuccessfulImports int
	SkippedRows       int
	DuplicatesFound   int
	IssuesResolved    int
	Suggestions       []string
}

// Result carries the records plus every intermediate artifact a review UI
// needs: the column mapping, validation issues, and duplicate groups.
type Result struct {
	RunID   string
	Records []record.Application
	Summary Summary
	Mapping mapping.Mapping
	Issues  []validate.Issue
	Groups  []dedupe.Group
}

// Importer wires the pipeline stages together. Construct with New; safe to
// reuse across runs.
type Importer struct {
	cfg       *config.Config
	enc       *encoding.Detector
	mapper    *mapping.Engine
	validator *validate.Validator
	deduper   *dedupe.Detector
}

// New builds an importer from configuration. A nil cfg uses the defaults.
func New(cfg *config.Config) *Importer {
	if cfg == nil {
		cfg = defaultConfig()
	}

	weights := dedupe.DefaultWeights()
	weights.DateDecayDays = cfg.Dedupe.DateDecayDays

	return &Importer{
		cfg: cfg,
		enc: encoding.NewDetector(cfg.Import.SampleBytes),
		mapper: mapping.NewEngine(mapping.Config{
			TemplateAdopt:  cfg.Mapping.TemplateAdopt,
			TemplateAssist: cfg.Mapping.TemplateAssist,
			FieldFloor:     cfg.Mapping.FieldFloor,
		}),
		validator: validate.New(),
		deduper: dedupe.NewDetector(weights, dedupe.Thresholds{
			Group: cfg.Dedupe.GroupThreshold,
			Merge: cfg.Dedupe.MergeThreshold,
		}),
	}
}

func defaultConfig() *config.Config {
	return &config.Config{
		Import:  config.ImportConfig{MaxFileSize: 100 << 20, BatchSize: 1000, SampleBytes: 8192, SampleRows: 20},
		Mapping: config.MappingConfig{TemplateAdopt: 0.7, TemplateAssist: 0.4, FieldFloor: 0.3},
		Dedupe:  config.DedupeConfig{GroupThreshold: 0.65, MergeThreshold: 0.9, DateDecayDays: 7},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

// Run executes the full pipeline over raw file bytes. Fatal conditions (file
// too large, empty file, no data rows, cancellation) return an error;
// everything else is collected into the result.
func (im *Importer) Run(ctx context.Context, data []byte, opts Options) (*Result, error) {
	runID := uuid.NewString()
	logger := logging.WithRun(runID)

	if limit := im.cfg.Import.MaxFileSize; int64(len(data)) > limit {
		return nil, fmt.Errorf("file is %d bytes, exceeds the %d byte limit", len(data), limit)
	}

	logger.Info("import started", "bytes", len(data))
	started := time.Now()

	// Detect encoding.
	im.report(opts, Progress{Stage: StageDetecting, Percent: pctDetecting, Message: "detecting file encoding"})
	cand := im.enc.Detect(data)
	logger.Info("encoding detected", "encoding", cand.Name, "confidence", cand.Confidence)
	if cand.Confidence < 0.6 {
		logger.Warn("encoding detection uncertain, decode may fall back", "encoding", cand.Name)
	}
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Decode.
	im.report(opts, Progress{Stage: StageDecoding, Percent: pctDecoding,
		Message: fmt.Sprintf("decoding as %s", cand.Name)})
	text := im.enc.DecodeBest(data, cand.Name)
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Parse.
	im.report(opts, Progress{Stage: StageParsing, Percent: pctParsing, Message: "parsing rows"})
	rows, headers, err := tabular.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	logger.Info("rows parsed", "rows", len(rows), "columns", len(headers))
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Map columns.
	im.report(opts, Progress{Stage: StageMapping, Percent: pctMapping, Message: "detecting column mapping"})
	m := im.mapper.DetectColumns(headers, sampleRows(rows, im.cfg.Import.SampleRows))
	if m.Template != "" {
		logger.Info("template adopted", "template", m.Template)
	}
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   runID,
		Mapping: m,
		Summary: Summary{TotalRows: len(rows)},
	}

	// Validate and clean.
	im.report(opts, Progress{Stage: StageValidating, Percent: pctValidating, Message: "validating rows"})
	var cleaned []validate.CleanedRow
	if opts.SkipValidation {
		cleaned = rawCleaned(rows, m)
	} else {
		vres := im.validator.Validate(rows, m)
		cleaned = vres.Cleaned
		res.Issues = append(res.Issues, vres.Errors...)
		res.Issues = append(res.Issues, vres.Warnings...)
		res.Summary.SkippedRows += len(rows) - len(cleaned)
		res.Summary.IssuesResolved = len(vres.Warnings)
		if len(vres.Errors) > 0 {
			logger.Warn("rows blocked by validation", "rows", len(rows)-len(cleaned))
			res.Summary.Suggestions = append(res.Summary.Suggestions,
				fmt.Sprintf("fix %d critical errors before importing", len(vres.Errors)))
		}
	}
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Detect duplicates.
	im.report(opts, Progress{Stage: StageDeduplicating, Percent: pctDeduplicating, Message: "checking for duplicates"})
	if !opts.SkipDedupe {
		candidates := make([]record.Application, len(cleaned))
		for i, c := range cleaned {
			candidates[i] = toApplication(c, time.Time{})
		}
		res.Groups = im.deduper.Detect(candidates, opts.Existing)
		res.Summary.DuplicatesFound = newMemberCount(res.Groups)
		if len(res.Groups) > 0 {
			logger.Info("duplicate groups found", "groups", len(res.Groups))
			res.Summary.Suggestions = append(res.Summary.Suggestions,
				"duplicates detected: review the suggested groups before proceeding")
		}
	}
	if err := im.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Convert, in cooperative batches.
	now := time.Now().UTC()
	batch := im.cfg.Import.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	total := len(cleaned)
	for start := 0; start < total; start += batch {
		if start > 0 {
			time.Sleep(time.Millisecond)
			if err := im.checkpoint(ctx); err != nil {
				return nil, err
			}
		}
		end := min(start+batch, total)
		for _, c := range cleaned[start:end] {
			app := toApplication(c, now)
			if app.Company == "" {
				res.Summary.SkippedRows++
				continue
			}
			res.Records = append(res.Records, app)
		}
		im.report(opts, Progress{
			Stage:   StageConverting,
			Percent: pctDeduplicating + (pctDone-pctDeduplicating)*end/total,
			Message: "converting rows",
			Current: end,
			Total:   total,
		})
	}
	res.Summary.SuccessfulImports = len(res.Records)

	res.Summary.Suggestions = append(res.Summary.Suggestions, m.Suggestions...)

	im.report(opts, Progress{Stage: StageConverting, Percent: pctDone, Message: "import complete",
		Current: total, Total: total})
	logger.Info("import finished",
		"imported", res.Summary.SuccessfulImports,
		"skipped", res.Summary.SkippedRows,
		"duplicates", res.Summary.DuplicatesFound,
		"duration", time.Since(started))

	return res, nil
}

// checkpoint reports cancellation between stages.
func (im *Importer) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import cancelled: %w", err)
	}
	return nil
}

func (im *Importer) report(opts Options, p Progress) {
	if opts.Progress != nil {
		opts.Progress(p)
	}
}

// sampleRows extracts up to n parsed rows as header -> value maps for
// content-based column scoring.
func sampleRows(rows []tabular.Row, n int) []map[string]string {
	if n <= 0 {
		n = 20
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]map[string]string, 0, n)
	for _, r := range rows[:n] {
		out = append(out, r.Values)
	}
	return out
}

// rawCleaned maps raw row values onto domain fields without validation,
// applying only cell-level cleanup.
func rawCleaned(rows []tabular.Row, m mapping.Mapping) []validate.CleanedRow {
	out := make([]validate.CleanedRow, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(m.Columns))
		for field, col := range m.Columns {
			if v := tabular.CleanCell(row.Get(col)); v != "" {
				fields[field] = v
			}
		}
		out = append(out, validate.CleanedRow{Line: row.Line, Fields: fields})
	}
	return out
}

// toApplication converts a cleaned row into a record. Date values that are
// not canonical ISO are dropped; the validator has already surfaced them as
// warnings. A zero now leaves the bookkeeping timestamps unset, which the
// duplicate detector uses for its throwaway candidates.
func toApplication(c validate.CleanedRow, now time.Time) record.Application {
	app := record.Application{
		Company:       c.Get(mapping.FieldCompany),
		Position:      c.Get(mapping.FieldPosition),
		Location:      c.Get(mapping.FieldLocation),
		Salary:        c.Get(mapping.FieldSalary),
		Notes:         c.Get(mapping.FieldNotes),
		ContactName:   c.Get(mapping.FieldContactName),
		Source:        c.Get(mapping.FieldSource),
		AppliedDate:   isoOrEmpty(c.Get(mapping.FieldAppliedDate)),
		InterviewDate: isoOrEmpty(c.Get(mapping.FieldInterviewDate)),
		OfferDate:     isoOrEmpty(c.Get(mapping.FieldOfferDate)),
		ResponseDate:  isoOrEmpty(c.Get(mapping.FieldResponseDate)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if email, ok := validate.NormalizeEmail(c.Get(mapping.FieldContactEmail)); ok {
		app.ContactEmail = email
	}
	if url, ok := validate.NormalizeURL(c.Get(mapping.FieldJobURL)); ok {
		app.JobURL = url
	}

	if st, ok := record.ParseStatus(c.Get(mapping.FieldStatus)); ok {
		app.Status = st
	} else {
		app.Status = record.StatusPending
	}
	if jt, ok := record.ParseJobType(c.Get(mapping.FieldJobType)); ok {
		app.JobType = jt
	} else if c.Get(mapping.FieldJobType) != "" {
		app.JobType = record.JobOther
	}
	if pr, ok := record.ParsePriority(c.Get(mapping.FieldPriority)); ok {
		app.Priority = pr
	}

	app.Tags = validate.SplitList(c.Get(mapping.FieldTags))
	app.Requirements = validate.SplitList(c.Get(mapping.FieldRequirements))

	if app.AppliedDate == "" && !now.IsZero() {
		app.AppliedDate = now.Format("2006-01-02")
	}

	return app
}

func isoOrEmpty(s string) string {
	if s == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// newMemberCount counts incoming rows that landed in any duplicate group.
func newMemberCount(groups []dedupe.Group) int {
	n := 0
	for _, g := range groups {
		for _, m := range g.Members {
			if !m.Existing {
				n++
			}
		}
	}
	return n
}
