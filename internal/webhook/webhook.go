package webhook

import "context"

const UploadResultSchemaVersion = 1

type UploadResultPayload struct {
	SchemaVersion  int    `json:"schema_version"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	AccountName    string `json:"account_name"`
	Title          string `json:"title"`
	DelaySeconds   int64  `json:"delay_seconds"`
	ScheduledAt    string `json:"scheduled_at,omitempty"`
	Succeeded      bool   `json:"succeeded"`
	ErrorDetail    string `json:"error_detail,omitempty"`
	FinishedAt     string `json:"finished_at"`
}

type Sender interface {
	SendUploadResult(ctx context.Context, payload UploadResultPayload) error
}
