package model

import (
	"time"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/google/uuid"
)

// Truncation limits for stored prompts and responses
const (
	maxStoredPrompt   = 2000
	maxStoredResponse = 5000
)

// GenerationRecordID is a UUID-based identifier for GenerationRecord
type GenerationRecordID string

// NewGenerationRecordID generates a new UUID v4 GenerationRecordID
func NewGenerationRecordID() GenerationRecordID {
	return GenerationRecordID(uuid.New().String())
}

// GenerationRecord is the audit trail of one generative call: what was
// asked, what came back, whether it was accepted, and how long it took.
// Prompts and responses are truncated so a chatty model cannot bloat
// the store.
type GenerationRecord struct {
	ID            GenerationRecordID
	ProjectID     types.ProjectID
	Workshop      types.WorkshopKind
	Model         string
	SystemPrompt  string
	UserPrompt    string
	RawResponse   string
	Success       bool
	ErrorMessage  string
	Attempts      int
	DurationMilli int64
	CreatedAt     time.Time
}

// NewGenerationRecord creates a record, truncating oversized payloads
func NewGenerationRecord(projectID types.ProjectID, workshop types.WorkshopKind, modelName string) *GenerationRecord {
	return &GenerationRecord{
		ID:        NewGenerationRecordID(),
		ProjectID: projectID,
		Workshop:  workshop,
		Model:     modelName,
		CreatedAt: time.Now().UTC(),
	}
}

// SetPrompts stores the prompts with truncation
func (r *GenerationRecord) SetPrompts(system, user string) {
	r.SystemPrompt = truncate(system, maxStoredPrompt)
	r.UserPrompt = truncate(user, maxStoredPrompt)
}

// SetResponse stores the raw response with truncation
func (r *GenerationRecord) SetResponse(raw string) {
	r.RawResponse = truncate(raw, maxStoredResponse)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
