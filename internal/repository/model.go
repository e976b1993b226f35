package repository

import "time"

type UploadStatus string

const (
	UploadStatusSucceeded UploadStatus = "succeeded"
	UploadStatusFailed    UploadStatus = "failed"
)

type UploadRecord struct {
	ID             string
	ConversationID string
	UserID         string
	AccountName    string
	Title          string
	DelaySeconds   int64
	ScheduledAt    *time.Time
	Status         UploadStatus
	ErrorDetail    string
	CreatedAt      time.Time
}
