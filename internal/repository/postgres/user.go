package postgres

import (
	"context"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(city, ''), role, is_active, email_verified, COALESCE(verification_token, ''), created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.City, &u.Role, &u.IsActive, &u.EmailVerified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, password_hash, first_name, last_name, phone, address, city, role, is_active, email_verified, verification_token, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now

	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.FirstName, u.LastName, nullString(u.Phone), nullString(u.Address), nullString(u.City), u.Role, u.IsActive, u.EmailVerified, nullString(u.VerificationToken), u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return mapError(err, nil, domain.ErrEmailTaken)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound, nil)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound, nil)
	}
	return u, nil
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, mapError(err, domain.ErrInvalidVerification, nil)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name=$1, last_name=$2, phone=$3, address=$4, city=$5, is_active=$6, email_verified=$7, verification_token=$8, updated_at=$9 WHERE id=$10`
	u.UpdatedAt = time.Now().UTC()

	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	res, err := r.db.ExecContext(ctx, query, u.FirstName, u.LastName, nullString(u.Phone), nullString(u.Address), nullString(u.City), u.IsActive, u.EmailVerified, nullString(u.VerificationToken), u.UpdatedAt, u.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", u.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrUserNotFound)
	logger.DatabaseResult("UPDATE", n, err, "userID", u.ID)
	return err
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE users SET is_active=$1, updated_at=$2 WHERE id=$3`
	logger.DatabaseCall("UPDATE", "users", "userID", id, "active", active)
	res, err := r.db.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrUserNotFound)
	logger.DatabaseResult("UPDATE", n, err, "userID", id)
	return err
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 AND is_active = TRUE ORDER BY id`, role)
}

func (r *userRepository) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	logger.DatabaseCall("SELECT", "users")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	logger.DatabaseResult("SELECT", int64(len(users)), rows.Err())
	return users, rows.Err()
}
