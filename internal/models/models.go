package models

import (
	"encoding/json"
	"maps"
	"time"
)

// JobStatus is the lifecycle state of an extraction job or an OCR job.
type JobStatus string

const (
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusSucceeded  JobStatus = "SUCCEEDED"
	StatusFailed     JobStatus = "FAILED"
	StatusNotFound   JobStatus = "NOT_FOUND"
	StatusUnknown    JobStatus = "UNKNOWN"
)

// Terminal reports whether no further transition can happen from s.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ExtractionJob is the caller-visible state of one extraction.
type ExtractionJob struct {
	ID     string            `json:"jobId,omitempty"`
	Status JobStatus         `json:"status"`
	Fields map[string]string `json:"fields,omitempty"` // only when SUCCEEDED
	Error  string            `json:"error,omitempty"`  // only when FAILED or NOT_FOUND
}

// MarshalJSON always emits fields for a SUCCEEDED job, as {} when nothing was extracted.
func (j ExtractionJob) MarshalJSON() ([]byte, error) {
	type plain ExtractionJob
	if j.Status != StatusSucceeded {
		return json.Marshal(plain(j))
	}
	fields := j.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return json.Marshal(struct {
		plain
		Fields map[string]string `json:"fields"`
	}{plain(j), fields})
}

// Clone returns a copy that shares no mutable state with j.
func (j ExtractionJob) Clone() ExtractionJob {
	j.Fields = maps.Clone(j.Fields)
	return j
}

// OcrJobResult is the aggregated view of an OCR job. Status is the provider
// status vocabulary, or "ERROR: <msg>" when aggregation itself failed.
type OcrJobResult struct {
	Status  string       `json:"status"`
	Results []PageResult `json:"results,omitempty"`
}

// PageResult holds the recognized text of one page.
type PageResult struct {
	Page  int        `json:"page"`
	Text  string     `json:"text"`
	Lines []LineInfo `json:"lines"`
}

type LineInfo struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

// BlockKind tags a recognized OCR block.
type BlockKind string

const (
	BlockPage  BlockKind = "PAGE"
	BlockLine  BlockKind = "LINE"
	BlockOther BlockKind = "OTHER"
)

// Block is a provider-neutral unit of recognized structure.
type Block struct {
	Kind       BlockKind
	Page       int
	ID         string
	Text       string
	Confidence *float32 // nil when the provider omitted it
}

// OcrPage is one pagination response from the OCR provider.
type OcrPage struct {
	Status    JobStatus
	Blocks    []Block
	NextToken *string // nil on the last page
}

// ArchivedResult is a terminal extraction job as written to the result archive.
type ArchivedResult struct {
	JobID       string            `db:"job_id" json:"jobId"`
	Bucket      string            `db:"bucket" json:"bucket"`
	ObjectKey   string            `db:"object_key" json:"key"`
	FieldSpec   string            `db:"field_spec" json:"fieldSpec"`
	Status      JobStatus         `db:"status" json:"status"`
	Fields      map[string]string `db:"fields" json:"fields,omitempty"`
	Error       string            `db:"error" json:"error,omitempty"`
	CompletedAt time.Time         `db:"completed_at" json:"completedAt"`
}

// StoredObject describes one object in a storage listing.
type StoredObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}
