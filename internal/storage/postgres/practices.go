package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/storage"
)

const practiceColumns = `id, user_id, name, total_days, current_streak, longest_streak,
	points, achievement_points, is_completed, last_practice_date, created_at`

func (s *Store) AddPractice(ctx context.Context, p models.Practice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO practices (`+practiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.UserID, p.Name, p.TotalDays, p.CurrentStreak, p.LongestStreak,
		p.Points, p.AchievementPoints, p.IsCompleted, p.LastPracticeDate, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("practice %q: %w", p.Name, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert practice: %w", err)
	}

	if err := insertDays(ctx, tx, p.ID, p.CompletedDays); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetPractice(ctx context.Context, id string) (models.Practice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+practiceColumns+` FROM practices WHERE id = $1`, id)
	p, err := scanPractice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Practice{}, fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
		}
		return models.Practice{}, err
	}

	p.CompletedDays, err = loadDays(ctx, s.db, p.ID)
	return p, err
}

func (s *Store) GetPracticeByName(ctx context.Context, userID, name string) (models.Practice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+practiceColumns+` FROM practices
		WHERE user_id = $1 AND lower(name) = lower($2)`, userID, name)
	p, err := scanPractice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Practice{}, fmt.Errorf("practice %q: %w", name, storage.ErrNotFound)
		}
		return models.Practice{}, err
	}

	p.CompletedDays, err = loadDays(ctx, s.db, p.ID)
	return p, err
}

func (s *Store) ListPractices(ctx context.Context, userID string) ([]models.Practice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+practiceColumns+` FROM practices
		WHERE user_id = $1 ORDER BY created_at DESC, name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var practices []models.Practice
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			return nil, err
		}
		p.CompletedDays = []string{}
		index[p.ID] = len(practices)
		practices = append(practices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(practices) == 0 {
		return practices, nil
	}

	// one round trip for every practice's days
	dayRows, err := s.db.QueryContext(ctx, `
		SELECT d.practice_id, to_char(d.day, 'YYYY-MM-DD')
		FROM practice_days d JOIN practices p ON p.id = d.practice_id
		WHERE p.user_id = $1 ORDER BY d.day`, userID)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var practiceID, day string
		if err := dayRows.Scan(&practiceID, &day); err != nil {
			return nil, err
		}
		if i, ok := index[practiceID]; ok {
			practices[i].CompletedDays = append(practices[i].CompletedDays, day)
		}
	}
	return practices, dayRows.Err()
}

func (s *Store) UpdatePractice(ctx context.Context, p models.Practice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updatePractice(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdatePracticeFunc(ctx context.Context, id string, fn func(tx storage.PracticeTx, current models.Practice) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+practiceColumns+` FROM practices WHERE id = $1 FOR UPDATE`, id)
	current, err := scanPractice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
		}
		return err
	}
	if current.CompletedDays, err = loadDays(ctx, tx, id); err != nil {
		return err
	}

	if err := fn(practiceTx{tx: tx}, current); err != nil {
		return err
	}
	return tx.Commit()
}

func updatePractice(ctx context.Context, tx *sql.Tx, p models.Practice) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE practices SET
			name = $1, total_days = $2, current_streak = $3, longest_streak = $4,
			points = $5, achievement_points = $6, is_completed = $7, last_practice_date = $8
		WHERE id = $9`,
		p.Name, p.TotalDays, p.CurrentStreak, p.LongestStreak,
		p.Points, p.AchievementPoints, p.IsCompleted, p.LastPracticeDate, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("practice %q: %w", p.Name, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to update practice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice %s: %w", p.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM practice_days WHERE practice_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear completed days: %w", err)
	}
	return insertDays(ctx, tx, p.ID, p.CompletedDays)
}

type practiceTx struct {
	tx *sql.Tx
}

func (t practiceTx) AchievementExists(ctx context.Context, practiceID, title string) (bool, error) {
	return achievementExists(ctx, t.tx, practiceID, title)
}

func (t practiceTx) InsertAchievementIfAbsent(ctx context.Context, a models.Achievement) (bool, error) {
	return insertAchievement(ctx, t.tx, a)
}

func (t practiceTx) UpdatePractice(ctx context.Context, p models.Practice) error {
	return updatePractice(ctx, t.tx, p)
}

func (s *Store) DeletePractice(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM practice_days WHERE practice_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete completed days: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM achievements WHERE practice_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete achievements: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM practices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete practice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
	}

	return tx.Commit()
}

func insertDays(ctx context.Context, tx *sql.Tx, practiceID string, days []string) error {
	for _, day := range days {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO practice_days (practice_id, day) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, practiceID, day)
		if err != nil {
			return fmt.Errorf("failed to insert day %s: %w", day, err)
		}
	}
	return nil
}

func loadDays(ctx context.Context, q querier, practiceID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT to_char(day, 'YYYY-MM-DD') FROM practice_days
		WHERE practice_id = $1 ORDER BY day`, practiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanPractice(row rowScanner) (models.Practice, error) {
	var p models.Practice
	var lastPractice sql.NullTime

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.TotalDays, &p.CurrentStreak, &p.LongestStreak,
		&p.Points, &p.AchievementPoints, &p.IsCompleted, &lastPractice, &p.CreatedAt)
	if err != nil {
		return models.Practice{}, err
	}
	if lastPractice.Valid {
		t := lastPractice.Time
		p.LastPracticeDate = &t
	}
	return p, nil
}
