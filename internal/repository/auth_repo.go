package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kunkakamikasa/dramini-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts a new user and returns the created user_id
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, role string) (int64, error) {
	var id int64
	query := `INSERT INTO users (email, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING user_id`
	if err := r.DB.QueryRow(ctx, query, email, passwordHash, role, time.Now()).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT user_id, email, password_hash, role, created_at, deleted_at
			FROM users
			WHERE email=$1`
	if err := r.DB.QueryRow(ctx, query, email).Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	query := `SELECT user_id, email, role, created_at, deleted_at FROM users WHERE user_id=$1`
	if err := r.DB.QueryRow(ctx, query, id).Scan(&u.UserID, &u.Email, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	if err := r.DB.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
