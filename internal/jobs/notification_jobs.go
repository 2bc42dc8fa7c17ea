package jobs

import (
	"context"
	"fmt"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
)

// RemindPendingDocuments tells the superadmins how many onboarding documents
// are still waiting for review. Nothing is sent when the queue is empty.
func (jr *JobRunner) RemindPendingDocuments() {
	jr.runWithRecovery("RemindPendingDocuments", func(ctx context.Context) {
		docs, err := jr.services.Document.ListPendingDocuments(ctx)
		if err != nil {
			logger.Error("Failed to list pending documents", "error", err)
			return
		}
		if len(docs) == 0 {
			logger.Info("No pending documents")
			return
		}

		agents := make(map[int64]struct{})
		oldest := docs[0].UploadedAt
		for _, d := range docs {
			agents[d.AgentID] = struct{}{}
			if d.UploadedAt.Before(oldest) {
				oldest = d.UploadedAt
			}
		}

		jr.publisher.Publish(ctx, domain.Event{
			Type:             domain.EventDocumentsPending,
			Recipient:        domain.Recipient{Type: domain.RecipientSuperAdminBroadcast},
			NotificationType: domain.NotificationDocumentsPending,
			Title:            "Documents Awaiting Review",
			Message: fmt.Sprintf("%d document(s) from %d agent(s) are waiting for review, oldest uploaded %s",
				len(docs), len(agents), oldest.Format("2006-01-02")),
		})
		logger.Info("Pending documents reminder published", "documents", len(docs), "agents", len(agents))
	})
}
