package service

import (
	"context"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error) {
	return s.noteRepo.List(ctx, recipient, false)
}

func (s *notificationService) ListUnread(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error) {
	return s.noteRepo.List(ctx, recipient, true)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipient domain.Recipient) (int64, error) {
	return s.noteRepo.CountUnread(ctx, recipient)
}

// MarkAsRead is scoped to the recipient; someone else's notification reads
// as not found.
func (s *notificationService) MarkAsRead(ctx context.Context, notificationID int64, recipient domain.Recipient) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, recipient)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, recipient domain.Recipient) (int64, error) {
	return s.noteRepo.MarkAllAsRead(ctx, recipient)
}

func (s *notificationService) Delete(ctx context.Context, notificationID int64, recipient domain.Recipient) error {
	return s.noteRepo.Delete(ctx, notificationID, recipient)
}
