package repository

import (
	"context"
	"errors"
	"time"

	"github.com/foxseedlab/tokpost/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Enabled() bool {
	return true
}

func (r *PostgresRepository) RecordUpload(ctx context.Context, input repository.RecordUploadInput) (*repository.UploadRecord, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO upload_records (id, conversation_id, user_id, account_name, title, delay_seconds, scheduled_at, status, error_detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, conversation_id, user_id, account_name, title, delay_seconds, scheduled_at, status, error_detail, created_at`,
		uuid.NewString(), input.ConversationID, input.UserID, input.AccountName, input.Title,
		input.DelaySeconds, input.ScheduledAt, string(input.Status), input.ErrorDetail)
	rec, err := scanUploadRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) ListRecentUploads(ctx context.Context, userID string, limit int) ([]repository.UploadRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, conversation_id, user_id, account_name, title, delay_seconds, scheduled_at, status, error_detail, created_at
		 FROM upload_records WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.UploadRecord
	for rows.Next() {
		rec, err := scanUploadRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanUploadRecord(row pgx.Row) (repository.UploadRecord, error) {
	var rec repository.UploadRecord
	var scheduledAt *time.Time
	var status string
	err := row.Scan(&rec.ID, &rec.ConversationID, &rec.UserID, &rec.AccountName, &rec.Title,
		&rec.DelaySeconds, &scheduledAt, &status, &rec.ErrorDetail, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, errors.New("upload record was not returned")
		}
		return rec, err
	}
	rec.ScheduledAt = scheduledAt
	rec.Status = repository.UploadStatus(status)
	return rec, nil
}
