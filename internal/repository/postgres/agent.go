package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type agentRepository struct {
	db DBTX
}

func NewAgentRepository(db DBTX) repository.AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `id, email, password_hash, first_name, last_name, agency_name, COALESCE(agency_address, ''), COALESCE(city, ''), COALESCE(phone, ''), account_status, approval_date, created_at, updated_at`

func scanAgent(row rowScanner) (*domain.Agent, error) {
	a := &domain.Agent{Role: domain.RoleAgent}
	var approval sql.NullTime
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.AgencyName, &a.AgencyAddress, &a.City, &a.Phone, &a.AccountStatus, &approval, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if approval.Valid {
		t := approval.Time
		a.ApprovalDate = &t
	}
	return a, nil
}

func (r *agentRepository) Create(ctx context.Context, a *domain.Agent) error {
	query := `INSERT INTO agents (email, password_hash, first_name, last_name, agency_name, agency_address, city, phone, account_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now().UTC()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Role = domain.RoleAgent
	a.CreatedAt = now
	a.UpdatedAt = now

	logger.DatabaseCall("INSERT", "agents", "email", a.Email)
	err := r.db.QueryRowContext(ctx, query, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.AgencyName, nullString(a.AgencyAddress), nullString(a.City), nullString(a.Phone), a.AccountStatus, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "agentID", a.ID)
	return mapError(err, nil, domain.ErrEmailTaken)
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	a, err := scanAgent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrAgentNotFound, nil)
	}
	return a, nil
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE LOWER(email) = LOWER($1)`
	a, err := scanAgent(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		return nil, mapError(err, domain.ErrAgentNotFound, nil)
	}
	return a, nil
}

func (r *agentRepository) Update(ctx context.Context, a *domain.Agent) error {
	query := `UPDATE agents SET first_name=$1, last_name=$2, agency_name=$3, agency_address=$4, city=$5, phone=$6, updated_at=$7 WHERE id=$8`
	a.UpdatedAt = time.Now().UTC()

	logger.DatabaseCall("UPDATE", "agents", "agentID", a.ID)
	res, err := r.db.ExecContext(ctx, query, a.FirstName, a.LastName, a.AgencyName, nullString(a.AgencyAddress), nullString(a.City), nullString(a.Phone), a.UpdatedAt, a.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "agentID", a.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrAgentNotFound)
	logger.DatabaseResult("UPDATE", n, err, "agentID", a.ID)
	return err
}

// UpdateStatus sets the account status. A nil approvalDate leaves the stored
// approval date untouched.
func (r *agentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AgentStatus, approvalDate *time.Time) error {
	query := `UPDATE agents SET account_status=$1, approval_date=COALESCE($2, approval_date), updated_at=$3 WHERE id=$4`

	logger.DatabaseCall("UPDATE", "agents", "agentID", id, "status", status)
	res, err := r.db.ExecContext(ctx, query, status, approvalDate, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "agentID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrAgentNotFound)
	logger.DatabaseResult("UPDATE", n, err, "agentID", id)
	return err
}

func (r *agentRepository) List(ctx context.Context, filter domain.AgentFilter) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND account_status = $%d", len(args))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		query += fmt.Sprintf(" AND LOWER(city) = LOWER($%d)", len(args))
	}
	query += " ORDER BY created_at DESC"

	logger.DatabaseCall("SELECT", "agents", "status", filter.Status, "city", filter.City)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	logger.DatabaseResult("SELECT", int64(len(agents)), rows.Err())
	return agents, rows.Err()
}
