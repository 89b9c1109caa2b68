package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/pkg/auth"
)

type UserRepository interface {
	Create(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, fullName, email string) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, newPasswordHash string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	q := `INSERT INTO users (username, email, password_hash, full_name) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, req.Username, req.Email, passwordHash, req.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, int(id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) getOne(ctx context.Context, q string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID int, fullName, email string) (*models.User, error) {
	q := `UPDATE users SET full_name = ?, email = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, fullName, email, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	changed, err := rowChanged(result)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}

	return r.GetByID(ctx, userID)
}

func (r *userRepository) ChangePassword(ctx context.Context, userID int, newPasswordHash string) error {
	q := `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, newPasswordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	changed, err := rowChanged(result)
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
}

func (r *userRepository) exists(ctx context.Context, q string, arg interface{}) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return count > 0, nil
}
