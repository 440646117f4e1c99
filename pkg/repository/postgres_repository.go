package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"relay/pkg/models"
)

const upsertStatusSQL = `
	INSERT INTO webhook_data (message_id, status, contact, date_time, author_name, chat_id, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (message_id) DO UPDATE SET
		status      = EXCLUDED.status,
		contact     = EXCLUDED.contact,
		date_time   = EXCLUDED.date_time,
		author_name = EXCLUDED.author_name,
		chat_id     = EXCLUDED.chat_id,
		updated_at  = EXCLUDED.updated_at
`

const selectStatusSQL = `
	SELECT message_id, status, contact, date_time, author_name, chat_id, updated_at
	FROM webhook_data
`

type postgresStatusRepository struct {
	db *sql.DB
}

func NewPostgresStatusRepository(db *sql.DB) StatusRepository {
	return &postgresStatusRepository{db: db}
}

func (r *postgresStatusRepository) UpsertBatch(ctx context.Context, records []models.Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertStatusSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		opaque, err := encodeOpaque(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.MessageID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.MessageID, rec.Status, opaque[0], opaque[1], rec.AuthorName, opaque[2], rec.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.MessageID, err)
		}
	}

	return tx.Commit()
}

func (r *postgresStatusRepository) ReadAll(ctx context.Context) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectStatusSQL+` ORDER BY updated_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresStatusRepository) FindByID(ctx context.Context, messageID string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL+` WHERE message_id = $1`, messageID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// encodeOpaque returns the JSONB values for contact, date_time and chat_id.
func encodeOpaque(rec models.Record) ([3][]byte, error) {
	var out [3][]byte
	for i, v := range []any{rec.Contact, rec.DateTime, rec.ChatID} {
		raw, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		out[i] = raw
	}
	return out, nil
}

func scanRecord(s scanner) (models.Record, error) {
	var (
		rec                       models.Record
		contact, dateTime, chatID []byte
	)
	if err := s.Scan(&rec.MessageID, &rec.Status, &contact, &dateTime, &rec.AuthorName, &chatID, &rec.UpdatedAt); err != nil {
		return rec, err
	}
	for _, f := range []struct {
		name string
		raw  []byte
		dest *any
	}{
		{"contact", contact, &rec.Contact},
		{"date_time", dateTime, &rec.DateTime},
		{"chat_id", chatID, &rec.ChatID},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return rec, fmt.Errorf("decode %s %s: %w", f.name, rec.MessageID, err)
		}
	}
	return rec, nil
}
