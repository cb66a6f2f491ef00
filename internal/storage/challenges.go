package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/mattn/go-sqlite3"
)

const challengeColumns = `id, title, description, challenge_type, target_value, target_unit,
	points_reward, badge_icon, start_date, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (model.Challenge, error) {
	var c model.Challenge
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Type, &c.TargetValue, &c.TargetUnit,
		&c.PointsReward, &c.BadgeIcon, &c.StartDate, &c.IsActive)
	return c, err
}

// CreateChallenge inserts a new active challenge and fills in its ID and start date.
func (s *SQLiteStorage) CreateChallenge(ctx context.Context, c *model.Challenge) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateChallenge(c); err != nil {
		return err
	}

	if c.BadgeIcon == "" {
		c.BadgeIcon = model.DefaultBadgeIcon
	}
	if c.StartDate.IsZero() {
		c.StartDate = s.now().UTC()
	}
	c.IsActive = true

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (title, description, challenge_type, target_value, target_unit,
			points_reward, badge_icon, start_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Title, c.Description, c.Type, c.TargetValue, c.TargetUnit,
		c.PointsReward, c.BadgeIcon, c.StartDate, c.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get challenge ID: %w", err)
	}
	c.ID = int(id)
	return nil
}

// GetChallenge returns the challenge with the given ID.
func (s *SQLiteStorage) GetChallenge(ctx context.Context, id int) (*model.Challenge, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	c, err := scanChallenge(s.db.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("challenge %d: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return &c, nil
}

// ListChallenges returns challenges ordered by ID.
func (s *SQLiteStorage) ListChallenges(ctx context.Context, activeOnly bool) ([]model.Challenge, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + challengeColumns + ` FROM challenges`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	challenges := []model.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// UpdateChallenge applies the non-nil fields of update.
func (s *SQLiteStorage) UpdateChallenge(ctx context.Context, id int, update model.ChallengeUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if update.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", common.ErrInvalidInput)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Title != nil {
		if err := validateString(*update.Title, "title"); err != nil {
			return err
		}
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Type != nil {
		if err := validateChallengeType(*update.Type); err != nil {
			return err
		}
		add("challenge_type", *update.Type)
	}
	if update.TargetValue != nil {
		if *update.TargetValue <= 0 {
			return fmt.Errorf("%w: target value must be positive", ErrInvalidChallenge)
		}
		add("target_value", *update.TargetValue)
	}
	if update.TargetUnit != nil {
		add("target_unit", *update.TargetUnit)
	}
	if update.PointsReward != nil {
		if *update.PointsReward < 0 {
			return fmt.Errorf("%w: points reward cannot be negative", ErrInvalidChallenge)
		}
		add("points_reward", *update.PointsReward)
	}
	if update.BadgeIcon != nil {
		add("badge_icon", *update.BadgeIcon)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("challenge %d", id))
}

// DeleteChallenge removes a challenge and everyone's participation in it.
func (s *SQLiteStorage) DeleteChallenge(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("challenge %d", id))
}

// AddUser creates a user. Emails are unique.
func (s *SQLiteStorage) AddUser(ctx context.Context, email, name string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if err := validateUser(email, name); err != nil {
		return nil, err
	}

	user := &model.User{Email: email, Name: name, CreatedAt: s.now().UTC()}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, created_at) VALUES (?, ?, ?)`,
		user.Email, user.Name, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", email, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to add user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}
	user.ID = int(id)
	return user, nil
}

// ListUsers returns users ordered by ID.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, email, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// JoinChallenge enrolls a user in a challenge. Joining twice is rejected
// with ErrDuplicateEntry.
func (s *SQLiteStorage) JoinChallenge(ctx context.Context, userID, challengeID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_challenges (user_id, challenge_id, current_progress, joined_at)
		VALUES (?, ?, 0, ?)
	`, userID, challengeID, s.now().UTC())
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("user %d already in challenge %d: %w", userID, challengeID, common.ErrDuplicateEntry)
		case isForeignKeyViolation(err):
			return fmt.Errorf("user %d or challenge %d: %w", userID, challengeID, common.ErrNotFound)
		}
		return fmt.Errorf("failed to join challenge: %w", err)
	}
	return nil
}

// UpdateProgress sets a participant's progress. A user who has not joined
// the challenge yields ErrNotFound.
func (s *SQLiteStorage) UpdateProgress(ctx context.Context, userID, challengeID int, progress float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProgress(progress); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE user_challenges SET current_progress = ?
		WHERE user_id = ? AND challenge_id = ?
	`, progress, userID, challengeID)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("user %d in challenge %d", userID, challengeID))
}

// Participants returns everyone enrolled in a challenge, most progress first.
func (s *SQLiteStorage) Participants(ctx context.Context, challengeID int) ([]model.UserChallenge, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, challenge_id, current_progress, joined_at
		FROM user_challenges
		WHERE challenge_id = ?
		ORDER BY current_progress DESC, user_id
	`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	participants := []model.UserChallenge{}
	for rows.Next() {
		var uc model.UserChallenge
		if err := rows.Scan(&uc.UserID, &uc.ChallengeID, &uc.CurrentProgress, &uc.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, uc)
	}
	return participants, rows.Err()
}

// Leaderboard ranks users by the points of the challenges they completed.
// A challenge counts as completed once progress reaches its target. Ties are
// broken by name.
func (s *SQLiteStorage) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.name,
			COALESCE(SUM(CASE WHEN uc.current_progress >= c.target_value THEN c.points_reward ELSE 0 END), 0) AS points,
			COALESCE(SUM(CASE WHEN uc.current_progress >= c.target_value THEN 1 ELSE 0 END), 0) AS completed
		FROM users u
		LEFT JOIN user_challenges uc ON uc.user_id = u.id
		LEFT JOIN challenges c ON c.id = uc.challenge_id
		GROUP BY u.id, u.name
		ORDER BY points DESC, u.name`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Points, &e.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
