package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/streaklit/internal/models"
)

func (s *Store) AchievementExists(ctx context.Context, practiceID, title string) (bool, error) {
	return achievementExists(ctx, s.db, practiceID, title)
}

func achievementExists(ctx context.Context, q querier, practiceID, title string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM achievements WHERE practice_id = ? AND title = ?)`,
		practiceID, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check achievement %q: %w", title, err)
	}
	return exists, nil
}

func (s *Store) InsertAchievementIfAbsent(ctx context.Context, a models.Achievement) (bool, error) {
	return insertAchievement(ctx, s.db, a)
}

func insertAchievement(ctx context.Context, q querier, a models.Achievement) (bool, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO achievements (id, practice_id, user_id, type, title, description, points, unlocked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (practice_id, title) DO NOTHING`,
		a.ID, a.PracticeID, a.UserID, string(a.Type), a.Title, a.Description, a.Points, formatTime(a.UnlockedAt))
	if err != nil {
		return false, fmt.Errorf("failed to insert achievement %q: %w", a.Title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) ListAchievements(ctx context.Context, practiceID string) ([]models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, practice_id, user_id, type, title, description, points, unlocked_at
		FROM achievements WHERE practice_id = ? ORDER BY unlocked_at, rowid`, practiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var typ, unlockedAt string
		if err := rows.Scan(&a.ID, &a.PracticeID, &a.UserID, &typ, &a.Title, &a.Description, &a.Points, &unlockedAt); err != nil {
			return nil, err
		}
		a.Type = models.AchievementType(typ)
		a.UnlockedAt, err = parseTime("unlocked_at", unlockedAt)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
