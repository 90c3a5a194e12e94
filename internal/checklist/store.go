package checklist

import (
	"context"
	"fmt"

	"github.com/Tianea2160/discipline/internal/db"
)

// Store is the save/find contract for generation records.
type Store interface {
	Save(ctx context.Context, e Entry) (*Entry, error)
	Update(ctx context.Context, e Entry) error
	FindByUser(ctx context.Context, userID string) ([]Entry, error)
}

// Table names backed by SQLStore. The generate and recommend pipelines keep
// separate histories.
const (
	TableChecklists          = "checklists"
	TableRecommendChecklists = "recommend_checklists"
)

type SQLStore struct {
	db    *db.DB
	table string
}

func NewSQLStore(db *db.DB, table string) *SQLStore {
	return &SQLStore{db: db, table: table}
}

func (s *SQLStore) Save(ctx context.Context, e Entry) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, target_date, goal, status, started_at)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, s.table),
		e.UserID, e.TargetDate, e.Goal, e.Status, e.StartedAt,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("checklist: save: %w", err)
	}
	return &e, nil
}

func (s *SQLStore) Update(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET checklist_json = NULLIF($2, ''),
		    status = $3,
		    error_message = NULLIF($4, ''),
		    started_at = $5,
		    completed_at = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, s.table),
		e.ID, e.ChecklistJSON, e.Status, e.ErrorMessage, e.StartedAt, e.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("checklist: update: %w", err)
	}
	return nil
}

func (s *SQLStore) FindByUser(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, COALESCE(user_id, ''), target_date, goal,
		       COALESCE(checklist_json, ''), status, COALESCE(error_message, ''),
		       started_at, completed_at, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, s.table), userID)
	if err != nil {
		return nil, fmt.Errorf("checklist: find by user: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.TargetDate, &e.Goal,
			&e.ChecklistJSON, &e.Status, &e.ErrorMessage,
			&e.StartedAt, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("checklist: scan row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
