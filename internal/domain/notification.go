package domain

import "time"

type RecipientType string

const (
	RecipientUser       RecipientType = "user"
	RecipientAgent      RecipientType = "agent"
	RecipientSuperAdmin RecipientType = "superadmin"
	// RecipientSuperAdminBroadcast is an addressing target only. It expands
	// to one notification per superadmin and is never stored.
	RecipientSuperAdminBroadcast RecipientType = "superadmin-broadcast"
)

type NotificationType string

const (
	NotificationRentalRequest      NotificationType = "rental_request"
	NotificationRentalApproved     NotificationType = "rental_approved"
	NotificationRentalRejected     NotificationType = "rental_rejected"
	NotificationRentalCancelled    NotificationType = "rental_cancelled"
	NotificationRentalCompleted    NotificationType = "rental_completed"
	NotificationDocumentUploaded   NotificationType = "document_uploaded"
	NotificationDocumentVerified   NotificationType = "document_verified"
	NotificationDocumentRejected   NotificationType = "document_rejected"
	NotificationDocumentsSubmitted NotificationType = "documents_submitted"
	NotificationDocumentsPending   NotificationType = "documents_pending"
	NotificationAgentApproved      NotificationType = "agent_approved"
	NotificationAgentRejected      NotificationType = "agent_rejected"
	NotificationAgentSuspended     NotificationType = "agent_suspended"
	NotificationAgentRegistered    NotificationType = "agent_registered"
	NotificationDocumentsRequested NotificationType = "documents_requested"
)

type Notification struct {
	ID                int64            `json:"id"`
	RecipientID       int64            `json:"recipient_id"`
	RecipientType     RecipientType    `json:"recipient_type"`
	Type              NotificationType `json:"type"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	RelatedEntityType string           `json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64           `json:"related_entity_id,omitempty"`
	IsRead            bool             `json:"is_read"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Recipient addresses notifications and lookups for one account.
type Recipient struct {
	ID   int64
	Type RecipientType
}

// RecipientFor maps an authenticated account to its notification inbox.
func RecipientFor(a Account) Recipient {
	switch {
	case a.IsAgent():
		return Recipient{ID: a.ID, Type: RecipientAgent}
	case a.IsSuperAdmin():
		return Recipient{ID: a.ID, Type: RecipientSuperAdmin}
	default:
		return Recipient{ID: a.ID, Type: RecipientUser}
	}
}
