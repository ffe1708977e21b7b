package sqlite

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

	var lastPractice sql.NullString
	if p.LastPracticeDate != nil {
		lastPractice = sql.NullString{String: formatTime(*p.LastPracticeDate), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO practices (`+practiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.TotalDays, p.CurrentStreak, p.LongestStreak,
		p.Points, p.AchievementPoints, p.IsCompleted, lastPractice, formatTime(p.CreatedAt))
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
	return getPractice(ctx, s.db, id)
}

func getPractice(ctx context.Context, q querier, id string) (models.Practice, error) {
	row := q.QueryRowContext(ctx, `SELECT `+practiceColumns+` FROM practices WHERE id = ?`, id)
	p, err := scanPractice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Practice{}, fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
		}
		return models.Practice{}, err
	}

	p.CompletedDays, err = loadDays(ctx, q, p.ID)
	return p, err
}

func (s *Store) GetPracticeByName(ctx context.Context, userID, name string) (models.Practice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+practiceColumns+` FROM practices
		WHERE user_id = ? AND name = ?`, userID, name)
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
		WHERE user_id = ? ORDER BY created_at DESC, name`, userID)
	if err != nil {
		return nil, err
	}

	var practices []models.Practice
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		practices = append(practices, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// release the connection before the per-practice day queries
	rows.Close()

	for i := range practices {
		practices[i].CompletedDays, err = loadDays(ctx, s.db, practices[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return practices, nil
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

	// a no-op write takes the database write lock before the read, so a
	// second writer waits here instead of failing on lock upgrade
	res, err := tx.ExecContext(ctx, `UPDATE practices SET id = id WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to lock practice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
	}

	current, err := getPractice(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := fn(practiceTx{tx: tx}, current); err != nil {
		return err
	}
	return tx.Commit()
}

func updatePractice(ctx context.Context, tx *sql.Tx, p models.Practice) error {
	var lastPractice sql.NullString
	if p.LastPracticeDate != nil {
		lastPractice = sql.NullString{String: formatTime(*p.LastPracticeDate), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE practices SET
			name = ?, total_days = ?, current_streak = ?, longest_streak = ?,
			points = ?, achievement_points = ?, is_completed = ?, last_practice_date = ?
		WHERE id = ?`,
		p.Name, p.TotalDays, p.CurrentStreak, p.LongestStreak,
		p.Points, p.AchievementPoints, p.IsCompleted, lastPractice, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("practice %q: %w", p.Name, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to update practice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice %s: %w", p.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM practice_days WHERE practice_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear completed days: %w", err)
	}
	return insertDays(ctx, tx, p.ID, p.CompletedDays)
}

// practiceTx routes the PracticeTx calls through one open transaction
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM practice_days WHERE practice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete completed days: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM achievements WHERE practice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete achievements: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM practices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete practice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice %s: %w", id, storage.ErrNotFound)
	}

	return tx.Commit()
}

func insertDays(ctx context.Context, tx *sql.Tx, practiceID string, days []string) error {
	if len(days) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO practice_days (practice_id, day) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare day insert: %w", err)
	}
	defer stmt.Close()

	for _, day := range days {
		if _, err := stmt.ExecContext(ctx, practiceID, day); err != nil {
			return fmt.Errorf("failed to insert day %s: %w", day, err)
		}
	}
	return nil
}

func loadDays(ctx context.Context, q querier, practiceID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT day FROM practice_days WHERE practice_id = ? ORDER BY day`, practiceID)
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
	var createdAt string
	var lastPractice sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.TotalDays, &p.CurrentStreak, &p.LongestStreak,
		&p.Points, &p.AchievementPoints, &p.IsCompleted, &lastPractice, &createdAt)
	if err != nil {
		return models.Practice{}, err
	}

	p.CreatedAt, err = parseTime("created_at", createdAt)
	if err != nil {
		return models.Practice{}, err
	}
	if lastPractice.Valid {
		t, err := parseTime("last_practice_date", lastPractice.String)
		if err != nil {
			return models.Practice{}, err
		}
		p.LastPracticeDate = &t
	}
	return p, nil
}
