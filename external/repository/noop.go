package repository

import (
	"context"

	"github.com/foxseedlab/tokpost/internal/repository"
)

// NoopRepository is used when DATABASE_URL is unset; history is simply not kept.
type NoopRepository struct{}

func NewNoopRepository() repository.Repository {
	return NoopRepository{}
}

func (NoopRepository) Enabled() bool {
	return false
}

func (NoopRepository) RecordUpload(_ context.Context, input repository.RecordUploadInput) (*repository.UploadRecord, error) {
	return &repository.UploadRecord{
		ConversationID: input.ConversationID,
		UserID:         input.UserID,
		AccountName:    input.AccountName,
		Title:          input.Title,
		DelaySeconds:   input.DelaySeconds,
		ScheduledAt:    input.ScheduledAt,
		Status:         input.Status,
		ErrorDetail:    input.ErrorDetail,
	}, nil
}

func (NoopRepository) ListRecentUploads(_ context.Context, _ string, _ int) ([]repository.UploadRecord, error) {
	return nil, nil
}
