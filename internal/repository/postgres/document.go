package postgres

import (
	"context"
	"database/sql"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type documentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) repository.DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, agent_id, document_type, file_path, file_name, COALESCE(file_size, 0), COALESCE(mime_type, ''), status, COALESCE(rejection_reason, ''), uploaded_at, verified_at, verified_by`

func scanDocument(row rowScanner) (*domain.AgentDocument, error) {
	d := &domain.AgentDocument{}
	var verifiedAt sql.NullTime
	var verifiedBy sql.NullInt64
	err := row.Scan(&d.ID, &d.AgentID, &d.DocumentType, &d.FilePath, &d.FileName, &d.FileSize, &d.MimeType, &d.Status, &d.RejectionReason, &d.UploadedAt, &verifiedAt, &verifiedBy)
	if err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		d.VerifiedAt = &t
	}
	if verifiedBy.Valid {
		id := verifiedBy.Int64
		d.VerifiedBy = &id
	}
	return d, nil
}

func (r *documentRepository) Create(ctx context.Context, d *domain.AgentDocument) error {
	query := `INSERT INTO agent_documents (agent_id, document_type, file_path, file_name, file_size, mime_type, status, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	d.UploadedAt = time.Now().UTC()

	logger.DatabaseCall("INSERT", "agent_documents", "agentID", d.AgentID, "type", d.DocumentType)
	err := r.db.QueryRowContext(ctx, query, d.AgentID, d.DocumentType, d.FilePath, d.FileName, d.FileSize, d.MimeType, d.Status, d.UploadedAt).Scan(&d.ID)
	logger.DatabaseResult("INSERT", 1, err, "documentID", d.ID)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.AgentDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM agent_documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrDocumentNotFound, nil)
	}
	return d, nil
}

func (r *documentRepository) Update(ctx context.Context, d *domain.AgentDocument) error {
	query := `UPDATE agent_documents SET status=$1, rejection_reason=$2, verified_at=$3, verified_by=$4 WHERE id=$5`

	logger.DatabaseCall("UPDATE", "agent_documents", "documentID", d.ID, "status", d.Status)
	res, err := r.db.ExecContext(ctx, query, d.Status, nullString(d.RejectionReason), d.VerifiedAt, d.VerifiedBy, d.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "documentID", d.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrDocumentNotFound)
	logger.DatabaseResult("UPDATE", n, err, "documentID", d.ID)
	return err
}

func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	logger.DatabaseCall("DELETE", "agent_documents", "documentID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM agent_documents WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "documentID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrDocumentNotFound)
	logger.DatabaseResult("DELETE", n, err, "documentID", id)
	return err
}

func (r *documentRepository) ListByAgent(ctx context.Context, agentID int64) ([]domain.AgentDocument, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM agent_documents WHERE agent_id = $1 ORDER BY uploaded_at DESC`, agentID)
}

func (r *documentRepository) ListByAgentAndType(ctx context.Context, agentID int64, documentType string) ([]domain.AgentDocument, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM agent_documents WHERE agent_id = $1 AND document_type = $2 ORDER BY uploaded_at DESC`, agentID, documentType)
}

func (r *documentRepository) ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.AgentDocument, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM agent_documents WHERE status = $1 ORDER BY uploaded_at`, status)
}

func (r *documentRepository) list(ctx context.Context, query string, args ...any) ([]domain.AgentDocument, error) {
	logger.DatabaseCall("SELECT", "agent_documents")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var docs []domain.AgentDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	logger.DatabaseResult("SELECT", int64(len(docs)), rows.Err())
	return docs, rows.Err()
}
