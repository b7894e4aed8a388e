package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/storage/db"
)

type CreateUserParams struct {
	Email          string
	Username       string
	FullName       string
	HashedPassword string
	IsAdmin        bool
	IsActive       bool
}

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, COALESCE(full_name, '') AS full_name,
	hashed_password, is_admin, is_active, created_at, updated_at`

type userRow struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	Username       string    `db:"username"`
	FullName       string    `db:"full_name"`
	HashedPassword string    `db:"hashed_password"`
	IsAdmin        bool      `db:"is_admin"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r userRepository) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	var fullName *string
	if params.FullName != "" {
		fullName = &params.FullName
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO users (email, username, full_name, hashed_password, is_admin, is_active)
		VALUES (@email, @username, @full_name, @hashed_password, @is_admin, @is_active)
		RETURNING `+userColumns+`;
	`, pgx.NamedArgs{
		"email":           params.Email,
		"username":        params.Username,
		"full_name":       fullName,
		"hashed_password": params.HashedPassword,
		"is_admin":        params.IsAdmin,
		"is_active":       params.IsActive,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		// The in-process duplicate checks are advisory only; the unique
		// constraints are the authoritative backstop under concurrency.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return model.User{}, apperr.EmailTakenErr.WrapParent(err)
			case "users_username_key":
				return model.User{}, apperr.UsernameTakenErr.WrapParent(err)
			}
		}
		return model.User{}, fmt.Errorf("collect created user: %w", err)
	}

	return userRowToModel(row), nil
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r userRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getUser(ctx, "username", username)
}

func (r userRepository) getUser(ctx context.Context, column, value string) (model.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = @value;
	`, pgx.NamedArgs{"value": value})
	if err != nil {
		return model.User{}, fmt.Errorf("get user by %s: %w", column, err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, apperr.UserNotFoundErr
		}
		return model.User{}, fmt.Errorf("collect user: %w", err)
	}

	return userRowToModel(row), nil
}

func userRowToModel(row userRow) model.User {
	return model.User{
		Base: model.Base{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		Email:          row.Email,
		Username:       row.Username,
		FullName:       row.FullName,
		HashedPassword: row.HashedPassword,
		IsAdmin:        row.IsAdmin,
		IsActive:       row.IsActive,
	}
}
