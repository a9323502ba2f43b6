package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paymentops/vigil/internal/model"
)

// AppendLesson persists one decision outcome. Lessons are append-only;
// there is no update or delete path.
func (s *SQLiteStorage) AppendLesson(ctx context.Context, lesson *model.LessonRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLesson(lesson); err != nil {
		return err
	}

	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now()
	}

	var metadata any
	if len(lesson.Metadata) > 0 {
		encoded, err := json.Marshal(lesson.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(encoded)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO lessons (diagnosis, action_taken, outcome, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		string(lesson.Diagnosis),
		lesson.ActionTaken,
		string(lesson.Outcome),
		metadata,
		lesson.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read lesson id: %w", err)
	}
	lesson.ID = id

	return nil
}

// RecentLessons returns up to n most recent lessons ordered
// oldest-to-newest within the slice.
func (s *SQLiteStorage) RecentLessons(ctx context.Context, n int) ([]model.LessonRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []model.LessonRecord{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, diagnosis, action_taken, outcome, metadata, created_at
		FROM lessons
		ORDER BY id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lessons []model.LessonRecord
	for rows.Next() {
		lesson, scanErr := scanLesson(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}

	// Query returns newest-first; callers expect oldest-to-newest.
	for i, j := 0, len(lessons)-1; i < j; i, j = i+1, j-1 {
		lessons[i], lessons[j] = lessons[j], lessons[i]
	}

	return lessons, nil
}

// CountLessonsByOutcome returns the total lessons recorded per outcome,
// used by incident-review tooling.
func (s *SQLiteStorage) CountLessonsByOutcome(ctx context.Context) (map[model.Outcome]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM lessons GROUP BY outcome
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.Outcome]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan lesson count: %w", err)
		}
		counts[model.Outcome(outcome)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson counts: %w", err)
	}

	return counts, nil
}

func scanLesson(rows *sql.Rows) (model.LessonRecord, error) {
	var lesson model.LessonRecord
	var diagnosis, actionTaken, outcome string
	var metadata sql.NullString

	if err := rows.Scan(&lesson.ID, &diagnosis, &actionTaken, &outcome, &metadata, &lesson.CreatedAt); err != nil {
		return model.LessonRecord{}, fmt.Errorf("failed to scan lesson: %w", err)
	}

	lesson.Diagnosis = model.Diagnosis(diagnosis)
	lesson.ActionTaken = actionTaken
	lesson.Outcome = model.Outcome(outcome)

	if metadata.Valid && metadata.String != "" {
		decoded := make(map[string]string)
		if err := json.Unmarshal([]byte(metadata.String), &decoded); err != nil {
			return model.LessonRecord{}, fmt.Errorf("failed to decode metadata: %w", err)
		}
		lesson.Metadata = decoded
	}

	return lesson, nil
}
