package http

import (
	"net/http"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

type AuthHandler struct {
	authSvc  service.AuthService
	userSvc  service.UserService
	validate *Validator
}

func NewAuthHandler(authSvc service.AuthService, userSvc service.UserService, v *Validator) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc, validate: v}
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.authSvc.RegisterUser(r.Context(), service.RegisterUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	agent, err := h.authSvc.RegisterAgent(r.Context(), service.RegisterAgentInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AgencyName:    req.AgencyName,
		AgencyAddress: req.AgencyAddress,
		City:          req.City,
		Phone:         req.Phone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Email verified successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, account, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, Account: account})
}

// GetProfile returns the caller's user or agent record.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if account.IsAgent() {
		agent, err := h.userSvc.GetAgentProfile(r.Context(), account.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
		return
	}
	user, err := h.userSvc.GetUserProfile(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if account.IsAgent() {
		var update domain.AgentProfileUpdate
		if err := h.validate.decode(r, &update); err != nil {
			writeError(w, r, err)
			return
		}
		agent, err := h.userSvc.UpdateAgentProfile(r.Context(), account.ID, update)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
		return
	}

	var update domain.UserProfileUpdate
	if err := h.validate.decode(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.UpdateUserProfile(r.Context(), account.ID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
