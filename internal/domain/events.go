package domain

import "time"

type EventType string

const (
	EventRentalRequested    EventType = "rental.requested"
	EventRentalApproved     EventType = "rental.approved"
	EventRentalRejected     EventType = "rental.rejected"
	EventRentalCancelled    EventType = "rental.cancelled"
	EventRentalCompleted    EventType = "rental.completed"
	EventDocumentUploaded   EventType = "document.uploaded"
	EventDocumentVerified   EventType = "document.verified"
	EventDocumentRejected   EventType = "document.rejected"
	EventDocumentsSubmitted EventType = "documents.submitted"
	EventDocumentsPending   EventType = "documents.pending"
	EventDocumentsRequested EventType = "documents.requested"
	EventAgentApproved      EventType = "agent.approved"
	EventAgentRejected      EventType = "agent.rejected"
	EventAgentSuspended     EventType = "agent.suspended"
	EventAgentRegistered    EventType = "agent.registered"
	EventUserRegistered     EventType = "user.registered"
)

// EmailMessage is an outbound email attached to an event.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Event is a domain fact published after a state change commits. Delivery
// (notification rows, email, broker) is asynchronous and best-effort.
type Event struct {
	ID                string           `json:"id"`
	Type              EventType        `json:"type"`
	OccurredAt        time.Time        `json:"occurred_at"`
	Recipient         Recipient        `json:"recipient"`
	NotificationType  NotificationType `json:"notification_type,omitempty"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	RelatedEntityType string           `json:"related_entity_type,omitempty"`
	RelatedEntityID   int64            `json:"related_entity_id,omitempty"`
	Email             *EmailMessage    `json:"email,omitempty"`
}

// Notification materialises the event for one concrete recipient.
func (e Event) Notification(to Recipient) *Notification {
	n := &Notification{
		RecipientID:       to.ID,
		RecipientType:     to.Type,
		Type:              e.NotificationType,
		Title:             e.Title,
		Message:           e.Message,
		RelatedEntityType: e.RelatedEntityType,
	}
	if e.RelatedEntityID != 0 {
		id := e.RelatedEntityID
		n.RelatedEntityID = &id
	}
	return n
}
