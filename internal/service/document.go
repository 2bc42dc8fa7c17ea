package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
	"karhubty-backend/internal/storage"
)

type documentService struct {
	docRepo   repository.DocumentRepository
	agentRepo repository.AgentRepository
	storage   storage.StorageInterface
	publisher events.Publisher
	now       func() time.Time
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	agentRepo repository.AgentRepository,
	store storage.StorageInterface,
	publisher events.Publisher,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		agentRepo: agentRepo,
		storage:   store,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *documentService) UploadDocument(ctx context.Context, agentID int64, documentType string, file domain.Upload) (*domain.AgentDocument, error) {
	logger.EnterMethod("documentService.UploadDocument", "agentID", agentID, "documentType", documentType)

	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.AccountStatus.CanUploadDocuments() {
		return nil, domain.Forbidden("documents cannot be uploaded while the account is %s", agent.AccountStatus)
	}

	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		return nil, domain.BadRequest("document type is required")
	}
	mimeType := strings.ToLower(file.ContentType)
	if !slices.Contains(domain.DocumentMimeTypes, mimeType) {
		return nil, domain.BadRequest("invalid file type, only PDF, JPEG and PNG are allowed")
	}
	size := file.Size
	if size == 0 {
		size = int64(len(file.Data))
	}
	if size <= 0 {
		return nil, domain.BadRequest("file is empty")
	}
	if size > domain.MaxDocumentSize {
		return nil, domain.BadRequest("file exceeds the 5MB limit")
	}

	key := storage.DocumentKey(agentID, file.FileName)
	if err := s.storage.SaveFile(ctx, key, bytes.NewReader(file.Data), size, mimeType); err != nil {
		logger.ExitMethodWithError("documentService.UploadDocument", err, "reason", "storage")
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	if agent.AccountStatus == domain.AgentStatusPending {
		if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusInVerification, nil); err != nil {
			_ = s.storage.DeleteFile(ctx, key)
			return nil, err
		}
		agent.AccountStatus = domain.AgentStatusInVerification
		logger.Info("Agent moved to verification", "agentID", agentID)
	}

	doc := &domain.AgentDocument{
		AgentID:      agentID,
		DocumentType: documentType,
		FilePath:     key,
		FileName:     storage.SanitizeFileName(file.FileName),
		FileSize:     size,
		MimeType:     mimeType,
		Status:       domain.DocumentStatusPending,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		_ = s.storage.DeleteFile(ctx, key)
		logger.ExitMethodWithError("documentService.UploadDocument", err)
		return nil, err
	}

	evt := newEvent(domain.EventDocumentUploaded, domain.NotificationDocumentUploaded,
		domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
		"New Document Uploaded",
		fmt.Sprintf("%s uploaded a %s document for review", agent.AgencyName, documentType))
	s.publisher.Publish(ctx, withEntity(evt, "document", doc.ID))

	logger.ExitMethod("documentService.UploadDocument", "documentID", doc.ID)
	return doc, nil
}

func (s *documentService) VerifyDocument(ctx context.Context, documentID, adminID int64, approved bool, reason string) (*domain.AgentDocument, error) {
	logger.EnterMethod("documentService.VerifyDocument", "documentID", documentID, "adminID", adminID, "approved", approved)

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if approved {
		now := s.now().UTC()
		doc.Status = domain.DocumentStatusVerified
		doc.VerifiedAt = &now
		doc.VerifiedBy = &adminID
		doc.RejectionReason = ""
	} else {
		doc.Status = domain.DocumentStatusRejected
		doc.RejectionReason = reason
	}
	if err := s.docRepo.Update(ctx, doc); err != nil {
		logger.ExitMethodWithError("documentService.VerifyDocument", err)
		return nil, err
	}

	s.notifyVerification(ctx, doc, approved, reason)

	if _, err := s.ApproveAgentAfterDocuments(ctx, doc.AgentID); err != nil {
		logger.Error("Failed to evaluate agent approval", "agentID", doc.AgentID, "error", err)
	}

	logger.ExitMethod("documentService.VerifyDocument", "documentID", documentID, "status", doc.Status)
	return doc, nil
}

func (s *documentService) notifyVerification(ctx context.Context, doc *domain.AgentDocument, approved bool, reason string) {
	et, nt := domain.EventDocumentVerified, domain.NotificationDocumentVerified
	title := "Document Verified"
	message := fmt.Sprintf("Your %s document has been verified", doc.DocumentType)
	if !approved {
		et, nt = domain.EventDocumentRejected, domain.NotificationDocumentRejected
		title = "Document Rejected"
		message = fmt.Sprintf("Your %s document has been rejected", doc.DocumentType)
		if reason != "" {
			message += ". Reason: " + reason
		}
	}

	evt := newEvent(et, nt, domain.Recipient{ID: doc.AgentID, Type: domain.RecipientAgent}, title, message)
	evt = withEntity(evt, "document", doc.ID)
	if agent, err := s.agentRepo.GetByID(ctx, doc.AgentID); err == nil {
		evt = withEmail(evt, agent.Email, "KarHubty - "+title, fmt.Sprintf("Hello %s,\n\n%s.", agent.AgencyName, message))
	}
	s.publisher.Publish(ctx, evt)
}

// ApproveAgentAfterDocuments promotes an agent in verification once every
// uploaded document is verified. It reports whether the agent was promoted.
func (s *documentService) ApproveAgentAfterDocuments(ctx context.Context, agentID int64) (bool, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return false, err
	}
	if agent.AccountStatus != domain.AgentStatusInVerification {
		return false, nil
	}

	docs, err := s.docRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return false, err
	}
	if !domain.AllVerified(docs) {
		return false, nil
	}

	now := s.now().UTC()
	if err := s.agentRepo.UpdateStatus(ctx, agentID, domain.AgentStatusApproved, &now); err != nil {
		return false, err
	}
	logger.Info("Agent approved after document verification", "agentID", agentID, "documents", len(docs))

	message := "All your documents have been verified. Your agency is approved and you can now list cars"
	evt := newEvent(domain.EventAgentApproved, domain.NotificationAgentApproved,
		domain.Recipient{ID: agentID, Type: domain.RecipientAgent}, "Account Approved", message)
	evt = withEntity(evt, "agent", agentID)
	evt = withEmail(evt, agent.Email, "KarHubty - Account Approved", fmt.Sprintf("Hello %s,\n\n%s.", agent.AgencyName, message))
	s.publisher.Publish(ctx, evt)

	return true, nil
}

func (s *documentService) SubmitForReview(ctx context.Context, agentID int64) error {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return err
	}
	docs, err := s.docRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return domain.BadRequest("upload at least one document before submitting")
	}

	evt := newEvent(domain.EventDocumentsSubmitted, domain.NotificationDocumentsSubmitted,
		domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
		"Documents Submitted for Review",
		fmt.Sprintf("%s submitted %d document(s) for review", agent.AgencyName, len(docs)))
	s.publisher.Publish(ctx, withEntity(evt, "agent", agentID))
	return nil
}

func (s *documentService) ListAgentDocuments(ctx context.Context, agentID int64) ([]domain.AgentDocument, error) {
	return s.docRepo.ListByAgent(ctx, agentID)
}

func (s *documentService) ListDocumentsByType(ctx context.Context, agentID int64, documentType string) ([]domain.AgentDocument, error) {
	return s.docRepo.ListByAgentAndType(ctx, agentID, documentType)
}

func (s *documentService) ListPendingDocuments(ctx context.Context) ([]domain.AgentDocument, error) {
	return s.docRepo.ListByStatus(ctx, domain.DocumentStatusPending)
}

func (s *documentService) DeleteDocument(ctx context.Context, documentID, agentID int64) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.AgentID != agentID {
		return domain.Forbidden("you can only delete your own documents")
	}
	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(ctx, doc.FilePath); err != nil {
		logger.Warn("Failed to delete stored document", "documentID", documentID, "path", doc.FilePath, "error", err)
	}
	return nil
}
