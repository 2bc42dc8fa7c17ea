package http

import (
	"context"
	"net/http"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	validate  *Validator
}

func NewRentalHandler(rentalSvc service.RentalService, v *Validator) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, validate: v}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createRentalRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.Create(r.Context(), account.ID, req.CarID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *RentalHandler) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := h.rentalSvc.CalculatePrice(r.Context(), req.CarID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *RentalHandler) CheckOverlap(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dateRangeRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}
	overlap, rental, err := h.rentalSvc.CheckUserOverlap(r.Context(), account.ID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overlapResponse{HasOverlap: overlap, Rental: rental})
}

func (h *RentalHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListByUser(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

// ForAgent lists the calling agent's rentals, optionally filtered by ?status=.
func (h *RentalHandler) ForAgent(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	rentals, err := h.rentalSvc.ListByAgent(r.Context(), account.ID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	rental, err := h.rentalSvc.Get(r.Context(), id, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// transition runs a state change addressed by the {id} path parameter on
// behalf of the caller.
func (h *RentalHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, rentalID, accountID int64) (*domain.Rental, error)) {
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
	rental, err := fn(r.Context(), id, account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Approve)
}

func (h *RentalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Reject)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rentalSvc.Cancel)
}

// Complete is open to any authenticated caller.
func (h *RentalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.Complete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// Stats is scoped to the caller's agency for agents and platform-wide for
// superadmins.
func (h *RentalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var agentID *int64
	switch {
	case account.IsAgent():
		agentID = &account.ID
	case !account.IsSuperAdmin():
		writeError(w, r, domain.Forbidden("rental statistics are available to agencies and administrators"))
		return
	}
	stats, err := h.rentalSvc.GetStats(r.Context(), agentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
