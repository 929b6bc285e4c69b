package analyses

import (
	"time"

	"resume-insights/internal/contract"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis is the stored record of one pipeline run.
type Analysis struct {
	ID           string                   `json:"id"`
	UserID       string                   `json:"userId"`
	JobRole      string                   `json:"jobRole"`
	FileName     string                   `json:"fileName,omitempty"`
	Format       string                   `json:"format,omitempty"`
	PageCount    int                      `json:"pageCount"`
	Provider     string                   `json:"provider,omitempty"`
	Attempts     int                      `json:"attempts"`
	Status       string                   `json:"status"`
	Result       *contract.AnalysisResult `json:"result,omitempty"`
	Repairs      []Repair                 `json:"repairs,omitempty"`
	ErrorCode    *string                  `json:"errorCode,omitempty"`
	ErrorMessage *string                  `json:"errorMessage,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	CompletedAt  *time.Time               `json:"completedAt,omitempty"`
}
