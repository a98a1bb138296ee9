package domain

import (
	"io"
	"time"
)

// Strategy identifies which extractor handles a document
type Strategy string

const (
	StrategyPDF   Strategy = "pdf"
	StrategyDOCX  Strategy = "docx"
	StrategyText  Strategy = "text"
	StrategyImage Strategy = "image"
)

// Label returns the format name used in extraction error messages
func (s Strategy) Label() string {
	switch s {
	case StrategyPDF:
		return "PDF"
	case StrategyDOCX:
		return "DOCX"
	case StrategyText:
		return "TXT"
	case StrategyImage:
		return "image"
	default:
		return string(s)
	}
}

// Document is an uploaded file as received. Content is consumed once.
type Document struct {
	FileName string
	Content  io.ReadSeeker
}

// Stage is a pipeline run state
type Stage string

const (
	StageReceived       Stage = "received"
	StageClassified     Stage = "classified"
	StageTextExtracted  Stage = "text_extracted"
	StageProbeOK        Stage = "probe_ok"
	StageGenerationOK   Stage = "generation_ok"
	StageResponseParsed Stage = "response_parsed"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// JobStatus represents the processing state of an async parse job
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobError is the failure summary exposed on a job
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ParseJob represents an asynchronous parse request
type ParseJob struct {
	JobID       string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	FileName    string     `json:"file_name"`
	Stage       Stage      `json:"stage"`
	Result      any        `json:"result,omitempty"`
	Error       *JobError  `json:"error,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AuditEntry is one row of resume_parse_audit
type AuditEntry struct {
	ID           string    `db:"id"`
	JobID        *string   `db:"job_id"`
	FileName     string    `db:"file_name"`
	Strategy     *string   `db:"strategy"`
	FinalStage   string    `db:"final_stage"`
	ErrorKind    *string   `db:"error_kind"`
	ErrorMessage *string   `db:"error_message"`
	TextLength   int       `db:"text_length"`
	Warnings     int       `db:"warnings"`
	DurationMS   int64     `db:"duration_ms"`
	RequestedBy  *string   `db:"requested_by"`
	CreatedAt    time.Time `db:"created_at"`
}
