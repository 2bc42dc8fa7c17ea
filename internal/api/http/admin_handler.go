package http

import (
	"net/http"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

type AdminHandler struct {
	adminSvc  service.AdminService
	carSvc    service.CarService
	rentalSvc service.RentalService
	validate  *Validator
}

func NewAdminHandler(adminSvc service.AdminService, carSvc service.CarService, rentalSvc service.RentalService, v *Validator) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, carSvc: carSvc, rentalSvc: rentalSvc, validate: v}
}

func (h *AdminHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	agents, err := h.adminSvc.ListAgents(r.Context(), domain.AgentFilter{
		Status: domain.AgentStatus(q.Get("status")),
		City:   q.Get("city"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *AdminHandler) PendingAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.adminSvc.ListPendingAgents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (h *AdminHandler) ApproveAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	agent, err := h.adminSvc.ApproveAgent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// agentWithReason runs a status change that takes an optional reason body.
func (h *AdminHandler) agentWithReason(w http.ResponseWriter, r *http.Request, fn func(r *http.Request, agentID int64, reason string) (*domain.Agent, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if r.ContentLength != 0 {
		if err := h.validate.decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	agent, err := fn(r, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (h *AdminHandler) RejectAgent(w http.ResponseWriter, r *http.Request) {
	h.agentWithReason(w, r, func(r *http.Request, agentID int64, reason string) (*domain.Agent, error) {
		return h.adminSvc.RejectAgent(r.Context(), agentID, reason)
	})
}

func (h *AdminHandler) SuspendAgent(w http.ResponseWriter, r *http.Request) {
	h.agentWithReason(w, r, func(r *http.Request, agentID int64, reason string) (*domain.Agent, error) {
		return h.adminSvc.SuspendAgent(r.Context(), agentID, reason)
	})
}

func (h *AdminHandler) ActivateAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	agent, err := h.adminSvc.ActivateAgent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (h *AdminHandler) RequestDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req requestDocumentsRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	agent, err := h.adminSvc.RequestDocuments(r.Context(), id, req.RequiredDocuments, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminSvc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req userActiveRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.adminSvc.SetUserActive(r.Context(), id, *req.IsActive); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "User status updated")
}

func (h *AdminHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carSvc.AdminListCars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *AdminHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.carSvc.AdminDeleteCar(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Car deleted successfully")
}

func (h *AdminHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	filter := domain.RentalFilter{Status: domain.RentalStatus(r.URL.Query().Get("status"))}
	var err error
	if filter.UserID, err = queryInt64(r, "user_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.AgentID, err = queryInt64(r, "agent_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.CarID, err = queryInt64(r, "car_id"); err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminSvc.PlatformStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.adminSvc.RevenueByAgent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Dashboard serves the calling agent's own revenue breakdown.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dash, err := h.adminSvc.AgentDashboard(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
