package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

// EmailSender is the outbound email backend.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// progressTTL bounds how long partial broadcast progress is kept for an
// event that never completes.
const progressTTL = time.Hour

// NotificationHandler stores one notification row per recipient. The
// superadmin broadcast target is expanded against the current admin roster.
// Recipients already stored for an event are skipped when the dispatcher
// retries it.
type NotificationHandler struct {
	notes repository.NotificationRepository
	users repository.UserRepository

	mu       sync.Mutex
	progress map[string]*deliveryProgress
	now      func() time.Time
}

type deliveryProgress struct {
	stored  map[domain.Recipient]struct{}
	touched time.Time
}

func NewNotificationHandler(notes repository.NotificationRepository, users repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notes:    notes,
		users:    users,
		progress: make(map[string]*deliveryProgress),
		now:      time.Now,
	}
}

func (h *NotificationHandler) Name() string { return "notification" }

func (h *NotificationHandler) Handle(ctx context.Context, evt domain.Event) error {
	if evt.NotificationType == "" {
		return nil
	}

	recipients, err := h.resolve(ctx, evt.Recipient)
	if err != nil {
		return err
	}

	for _, rc := range recipients {
		if h.stored(evt.ID, rc) {
			logger.Debug("Notification already stored, skipping", "eventID", evt.ID, "recipientID", rc.ID, "recipientType", rc.Type)
			continue
		}
		if err := h.notes.Create(ctx, evt.Notification(rc)); err != nil {
			return fmt.Errorf("store notification for %s %d: %w", rc.Type, rc.ID, err)
		}
		h.markStored(evt.ID, rc)
	}
	h.forget(evt.ID)
	return nil
}

func (h *NotificationHandler) stored(eventID string, rc domain.Recipient) bool {
	if eventID == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.progress[eventID]
	if !ok {
		return false
	}
	_, ok = p.stored[rc]
	return ok
}

func (h *NotificationHandler) markStored(eventID string, rc domain.Recipient) {
	if eventID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for id, p := range h.progress {
		if now.Sub(p.touched) > progressTTL {
			delete(h.progress, id)
		}
	}

	p, ok := h.progress[eventID]
	if !ok {
		p = &deliveryProgress{stored: make(map[domain.Recipient]struct{})}
		h.progress[eventID] = p
	}
	p.stored[rc] = struct{}{}
	p.touched = now
}

func (h *NotificationHandler) forget(eventID string) {
	h.mu.Lock()
	delete(h.progress, eventID)
	h.mu.Unlock()
}

func (h *NotificationHandler) resolve(ctx context.Context, rc domain.Recipient) ([]domain.Recipient, error) {
	if rc.Type != domain.RecipientSuperAdminBroadcast {
		return []domain.Recipient{rc}, nil
	}

	admins, err := h.users.ListByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("list superadmins: %w", err)
	}
	if len(admins) == 0 {
		logger.Warn("No superadmin to notify")
	}
	out := make([]domain.Recipient, 0, len(admins))
	for _, a := range admins {
		out = append(out, domain.Recipient{ID: a.ID, Type: domain.RecipientSuperAdmin})
	}
	return out, nil
}

// EmailHandler sends the email attached to an event, if any.
type EmailHandler struct {
	sender EmailSender
}

func NewEmailHandler(sender EmailSender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

func (h *EmailHandler) Name() string { return "email" }

func (h *EmailHandler) Handle(ctx context.Context, evt domain.Event) error {
	if evt.Email == nil || evt.Email.To == "" {
		return nil
	}
	return h.sender.SendEmail(ctx, evt.Email.To, evt.Email.Subject, evt.Email.Body)
}
