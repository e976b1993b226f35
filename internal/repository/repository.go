package repository

import (
	"context"
	"time"
)

type RecordUploadInput struct {
	ConversationID string
	UserID         string
	AccountName    string
	Title          string
	DelaySeconds   int64
	ScheduledAt    *time.Time
	Status         UploadStatus
	ErrorDetail    string
}

type UploadRepository interface {
	RecordUpload(ctx context.Context, input RecordUploadInput) (*UploadRecord, error)
	ListRecentUploads(ctx context.Context, userID string, limit int) ([]UploadRecord, error)
}

type Repository interface {
	UploadRepository
	Enabled() bool
}
