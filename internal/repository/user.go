package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/datekeeper/internal/database"
	"github.com/hray3182/datekeeper/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO app_user (email, display_name) VALUES ($1, $2)
		 RETURNING user_id::text`,
		user.Email, user.DisplayName,
	).Scan(&user.UserID)
}

func (r *UserRepository) UserByID(ctx context.Context, userID string) (*models.User, error) {
	key, err := userKey(userID)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	err = r.db.Pool.QueryRow(ctx,
		`SELECT user_id::text, email, display_name FROM app_user WHERE user_id = $1::uuid`,
		key,
	).Scan(&user.UserID, &user.Email, &user.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}
