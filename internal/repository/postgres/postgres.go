package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.AgentRepository
	repository.CarRepository
	repository.RentalRepository
	repository.DocumentRepository
	repository.ReviewRepository
	repository.NotificationRepository
	repository.StatsRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		AgentRepository:        NewAgentRepository(db),
		CarRepository:          NewCarRepository(db),
		RentalRepository:       NewRentalRepository(db),
		DocumentRepository:     NewDocumentRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		StatsRepository:        NewStatsRepository(db),
	}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	logger.DatabaseCall("BEGIN", "transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BEGIN", 0, err)
		return err
	}

	repos := repository.TxRepositories{
		Rentals: NewRentalRepository(tx),
		Cars:    NewCarRepository(tx),
		Agents:  NewAgentRepository(tx),
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Transaction rollback failed", "error", rbErr)
		}
		logger.DatabaseResult("ROLLBACK", 0, nil, "cause", err)
		return err
	}

	err = tx.Commit()
	logger.DatabaseResult("COMMIT", 0, err)
	return err
}

var _ repository.Transactor = (*Store)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

const uniqueViolation = "23505"

// mapError turns driver errors into domain errors: missing rows become
// notFound and unique violations become conflict. Other errors pass through.
func mapError(err error, notFound, conflict *domain.Error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if conflict != nil && errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return conflict.Wrap(err)
	}
	return err
}

// expectAffected reports notFound when an UPDATE/DELETE matched no row.
func expectAffected(res sql.Result, notFound *domain.Error) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, notFound
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
