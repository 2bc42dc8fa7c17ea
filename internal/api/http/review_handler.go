package http

import (
	"net/http"

	"karhubty-backend/internal/service"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
	validate  *Validator
}

func NewReviewHandler(reviewSvc service.ReviewService, v *Validator) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, validate: v}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.Create(r.Context(), account.ID, req.CarID, req.RentalID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.reviewSvc.ListForUser(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateReviewRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.Update(r.Context(), id, account.ID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.reviewSvc.Delete(r.Context(), id, account.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Review deleted successfully")
}

func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewSvc.ListPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.Approve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
