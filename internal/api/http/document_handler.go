package http

import (
	"errors"
	"net/http"
	"strings"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

type DocumentHandler struct {
	docSvc   service.DocumentService
	validate *Validator
}

func NewDocumentHandler(docSvc service.DocumentService, v *Validator) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc, validate: v}
}

// Upload takes a multipart form with "file" and "document_type".
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, r, domain.BadRequest("invalid multipart form: %v", err))
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, r, domain.BadRequest("no file uploaded"))
			return
		}
		writeError(w, r, domain.BadRequest("invalid file: %v", err))
		return
	}
	upload, err := readUpload(fh)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.docSvc.UploadDocument(r.Context(), account.ID, strings.TrimSpace(r.FormValue("document_type")), upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Mine lists the caller's documents, optionally narrowed by ?type=.
func (h *DocumentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var docs []domain.AgentDocument
	if docType := r.URL.Query().Get("type"); docType != "" {
		docs, err = h.docSvc.ListDocumentsByType(r.Context(), account.ID, docType)
	} else {
		docs, err = h.docSvc.ListAgentDocuments(r.Context(), account.ID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.docSvc.SubmitForReview(r.Context(), account.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Documents submitted for review")
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.docSvc.DeleteDocument(r.Context(), id, account.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Document deleted successfully")
}

func (h *DocumentHandler) Pending(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docSvc.ListPendingDocuments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) ForAgent(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	docs, err := h.docSvc.ListAgentDocuments(r.Context(), agentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
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
	var req verifyDocumentRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.docSvc.VerifyDocument(r.Context(), id, account.ID, *req.Approved, req.RejectionReason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
