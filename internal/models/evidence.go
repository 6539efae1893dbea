package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvidenceRecord - одна единица фото/видео-доказательства. Записи неизменяемы.
type EvidenceRecord struct {
	BaseModel
	RentalID string       `gorm:"type:uuid;not null;index:idx_evidence_rental_phase_party,priority:1" json:"rental_id"`
	Phase    Phase        `gorm:"type:varchar(16);not null;index:idx_evidence_rental_phase_party,priority:2" json:"phase"`
	Party    Party        `gorm:"type:varchar(16);not null;index:idx_evidence_rental_phase_party,priority:3" json:"party"`
	Kind     EvidenceKind `gorm:"type:varchar(16);not null" json:"kind"`
	Seq      int          `gorm:"not null;default:1" json:"seq"`

	CapturedAt time.Time `gorm:"not null" json:"captured_at"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`

	// StoragePath идентифицирует доказательство: повтор загрузки дает тот же путь.
	StoragePath         string  `gorm:"not null;uniqueIndex" json:"storage_path"`
	OriginalStoragePath *string `json:"original_storage_path,omitempty"`
	MimeType            string  `json:"mime_type"`
	ByteSize            int64   `json:"byte_size"`
	Width               *int    `json:"width,omitempty"`
	Height              *int    `json:"height,omitempty"`
	DurationMs          *int64  `json:"duration_ms,omitempty"`

	UploaderID  string         `gorm:"type:uuid;not null;index" json:"uploader_id"`
	RawMetadata datatypes.JSON `gorm:"type:jsonb" json:"raw_metadata,omitempty"`
}

func (EvidenceRecord) TableName() string {
	return "evidence_records"
}
