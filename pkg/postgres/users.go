package postgres

import (
	"context"
	"database/sql"

	"github.com/neil1taylor/demo-3-tier-app/pkg/models"
)

// ListUsers returns every user ordered by ascending id. An empty table
// yields an empty, non-nil slice.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	conn, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var created sql.NullTime
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = formatTimestamp(created)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("retrieved users", "count", len(users))
	return users, nil
}

// CreateUser inserts u and returns it with the store-assigned id and
// created_at. A duplicate email is returned as an *Error of kind
// UniquenessViolation.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	conn, err := s.Acquire(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Close()

	var created sql.NullTime
	err = conn.QueryRowContext(ctx,
		`INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id, created_at`,
		u.Name, u.Email,
	).Scan(&u.ID, &created)
	if err != nil {
		if Classify(err) == UniquenessViolation {
			return models.User{}, &Error{Kind: UniquenessViolation, Msg: "user with this email already exists", Err: err}
		}
		return models.User{}, err
	}

	u.CreatedAt = formatTimestamp(created)
	return u, nil
}

func formatTimestamp(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(models.TimestampLayout)
}
