package domain

import "time"

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// MaxDocumentSize is the upload limit for onboarding documents and car images.
const MaxDocumentSize = 5 << 20

// DocumentMimeTypes are the accepted onboarding document formats.
var DocumentMimeTypes = []string{"application/pdf", "image/jpeg", "image/jpg", "image/png"}

// AgentDocument is an onboarding document (license, insurance, ...) an agent
// submits for superadmin review.
type AgentDocument struct {
	ID              int64          `json:"id"`
	AgentID         int64          `json:"agent_id"`
	DocumentType    string         `json:"document_type"`
	FilePath        string         `json:"file_path"`
	FileName        string         `json:"file_name"`
	FileSize        int64          `json:"file_size"`
	MimeType        string         `json:"mime_type"`
	Status          DocumentStatus `json:"status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
	VerifiedBy      *int64         `json:"verified_by,omitempty"`
}

// AllVerified reports whether docs is non-empty and every entry is verified.
func AllVerified(docs []AgentDocument) bool {
	if len(docs) == 0 {
		return false
	}
	for _, d := range docs {
		if d.Status != DocumentStatusVerified {
			return false
		}
	}
	return true
}

// Upload is a file received from a client, before it reaches storage.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}
