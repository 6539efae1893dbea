package dto

import (
	"io"
	"time"

	"rentproof_backend/internal/models"
)

// ============================================
// REQUEST STRUCTURES
// ============================================

// UploadEvidenceForm - поля multipart-формы, файлы читаются отдельно.
type UploadEvidenceForm struct {
	Phase      string   `form:"phase" validate:"required,is-phase"`
	Kind       string   `form:"kind" validate:"required,is-evidence-kind"`
	Party      string   `form:"party" validate:"omitempty,is-party"`
	Seq        int      `form:"seq" validate:"omitempty,min=0"`
	CapturedAt string   `form:"captured_at" validate:"omitempty"`
	Lat        *float64 `form:"lat" validate:"omitempty,latitude"`
	Lng        *float64 `form:"lng" validate:"omitempty,longitude"`
	Width      *int     `form:"width" validate:"omitempty,min=1"`
	Height     *int     `form:"height" validate:"omitempty,min=1"`
	DurationMs *int64   `form:"duration_ms" validate:"omitempty,min=0"`
	Metadata   string   `form:"metadata" validate:"omitempty,json"`
}

// EvidenceFile is an opened upload part.
type EvidenceFile struct {
	Reader   io.Reader
	Size     int64
	MimeType string
}

type UploadEvidenceRequest struct {
	RentalID   string
	UploaderID string
	// PartyHint disambiguates a self-rental, where the uploader is both parties.
	PartyHint  models.Party
	Phase      models.Phase
	Kind       models.EvidenceKind
	Seq        int
	CapturedAt time.Time
	Lat        *float64
	Lng        *float64
	Width      *int
	Height     *int
	DurationMs *int64
	Metadata   []byte

	File     EvidenceFile
	Original *EvidenceFile
}

// ============================================
// RESPONSE STRUCTURES
// ============================================

type EvidenceResponse struct {
	*models.EvidenceRecord
	URL         string `json:"url,omitempty"`
	OriginalURL string `json:"original_url,omitempty"`
}

type UploadEvidenceResponse struct {
	Evidence *EvidenceResponse `json:"evidence"`
	Status   *StatusResult     `json:"status,omitempty"`
	// StatusPending is set when the evidence was stored but the status could not be
	// recomputed; the client retries through the phase completion endpoint.
	StatusPending bool `json:"status_pending,omitempty"`
}

// StoredFile - открытый объект хранилища; caller closes Body.
type StoredFile struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type EvidenceListResponse struct {
	Evidence []*EvidenceResponse `json:"evidence"`
	Total    int                 `json:"total"`
}
