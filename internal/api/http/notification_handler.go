package http

import (
	"net/http"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

// NotificationHandler serves the caller's own inbox; the recipient always
// comes from the token.
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: svc}
}

func inbox(r *http.Request) (domain.Recipient, error) {
	account, err := mustAccount(r)
	if err != nil {
		return domain.Recipient{}, err
	}
	return domain.RecipientFor(account), nil
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.notificationSvc.List(r.Context(), rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.notificationSvc.ListUnread(r.Context(), rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NotificationHandler) Count(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.notificationSvc.UnreadCount(r.Context(), rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notificationSvc.MarkAsRead(r.Context(), id, rc); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.notificationSvc.MarkAllAsRead(r.Context(), rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rc, err := inbox(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notificationSvc.Delete(r.Context(), id, rc); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Notification deleted")
}
