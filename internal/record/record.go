// Package record defines the canonical application record produced by the
// import pipeline and the fixed vocabularies (status, job type, priority)
// the rest of the engine normalizes into.
package record

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a job application.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffered      Status = "Offered"
	StatusRejected     Status = "Rejected"
	StatusAccepted     Status = "Accepted"
	StatusWithdrawn    Status = "Withdrawn"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusPending, StatusApplied, StatusInterviewing, StatusOffered,
	StatusRejected, StatusAccepted, StatusWithdrawn,
}

// Rank orders statuses by how far along the application is.
// Used when merging duplicates: the more advanced status wins.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusApplied, StatusWithdrawn:
		return 1
	case StatusInterviewing, StatusRejected:
		return 2
	case StatusOffered:
		return 3
	case StatusAccepted:
		return 4
	default:
		return 0
	}
}

// ParseStatus matches a canonical status name case-insensitively.
// Returns false for anything outside the fixed vocabulary; free-text
// synonym handling lives in the validator, not here.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// JobType is the employment arrangement for a position.
type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobTemporary  JobType = "temporary"
	JobOther      JobType = "other"
)

// JobTypes lists every valid job type.
var JobTypes = []JobType{
	JobFullTime, JobPartTime, JobContract, JobInternship, JobTemporary, JobOther,
}

// ParseJobType matches a canonical job type case-insensitively.
func ParseJobType(s string) (JobType, bool) {
	for _, jt := range JobTypes {
		if strings.EqualFold(string(jt), strings.TrimSpace(s)) {
			return jt, true
		}
	}
	return "", false
}

// Priority is the user-assigned importance of an application.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority matches a canonical priority case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// Application is the typed output record of an import run.
//
// Invariants: Company is non-empty; Status is one of the Status constants;
// date fields, when set, hold a valid calendar date in YYYY-MM-DD form.
// The converter in internal/importer enforces these before emitting.
type Application struct {
	Company       string
	Position      string
	Location      string
	JobType       JobType
	Salary        string
	Status        Status
	AppliedDate   string // YYYY-MM-DD, "" when unknown
	InterviewDate string
	OfferDate     string
	ResponseDate  string
	Notes         string
	ContactName   string
	ContactEmail  string
	JobURL        string
	Tags          []string
	Requirements  []string
	Priority      Priority
	Source        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy. The dedupe detector and merge preview never
// mutate caller-owned records; they work on clones.
func (a Application) Clone() Application {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	if a.Requirements != nil {
		out.Requirements = append([]string(nil), a.Requirements...)
	}
	return out
}
