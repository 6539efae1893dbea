package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/internal/storage"
	"rentproof_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UploadLimits bounds accepted evidence files.
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

type EvidenceService interface {
	// UploadEvidence stores the media, appends the record and recomputes the status.
	// When only the recomputation fails the response is still returned with
	// StatusPending set, together with the error.
	UploadEvidence(ctx context.Context, db *gorm.DB, req *dto.UploadEvidenceRequest) (*dto.UploadEvidenceResponse, error)
	ListEvidence(ctx context.Context, db *gorm.DB, requesterID, rentalID string, phase models.Phase, party models.Party) (*dto.EvidenceListResponse, error)

	// OpenFile streams a stored object to a party of the rental the key belongs to.
	OpenFile(ctx context.Context, db *gorm.DB, requesterID, key string) (*dto.StoredFile, error)
}

type evidenceService struct {
	rentalRepo   repositories.RentalRepository
	evidenceRepo repositories.EvidenceRepository
	statusEngine RentalStatusService
	storage      storage.Storage
	limits       UploadLimits
	now          func() time.Time
}

func NewEvidenceService(
	rentalRepo repositories.RentalRepository,
	evidenceRepo repositories.EvidenceRepository,
	statusEngine RentalStatusService,
	store storage.Storage,
	limits UploadLimits,
) EvidenceService {
	return &evidenceService{
		rentalRepo:   rentalRepo,
		evidenceRepo: evidenceRepo,
		statusEngine: statusEngine,
		storage:      store,
		limits:       limits,
		now:          time.Now,
	}
}

func (s *evidenceService) UploadEvidence(ctx context.Context, db *gorm.DB, req *dto.UploadEvidenceRequest) (*dto.UploadEvidenceResponse, error) {
	if !req.Phase.Valid() {
		return nil, apperrors.ErrInvalidPhase
	}
	if !req.Kind.Valid() {
		return nil, apperrors.ErrInvalidEvidenceKind
	}

	rental, err := s.loadRental(ctx, db, req.RentalID)
	if err != nil {
		return nil, err
	}
	party, err := resolveParty(rental, req.UploaderID, req.PartyHint)
	if err != nil {
		return nil, err
	}
	if req.Phase == models.PhaseReturn && rental.Status.Stage() < models.PhaseReturn.Stage() {
		return nil, apperrors.ErrReturnBeforeStart
	}

	if err := s.checkFile(req.Kind, req.File); err != nil {
		return nil, err
	}
	if req.Original != nil {
		if err := s.checkFile(req.Kind, *req.Original); err != nil {
			return nil, err
		}
	}

	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = s.now()
	}
	mainPath, originalPath := EvidencePaths(req.RentalID, req.Phase, party, req.Kind, capturedAt, req.Seq)

	record := &models.EvidenceRecord{
		RentalID:    req.RentalID,
		Phase:       req.Phase,
		Party:       party,
		Kind:        req.Kind,
		Seq:         req.Seq,
		CapturedAt:  capturedAt,
		Lat:         req.Lat,
		Lng:         req.Lng,
		StoragePath: mainPath,
		MimeType:    req.File.MimeType,
		ByteSize:    req.File.Size,
		Width:       req.Width,
		Height:      req.Height,
		DurationMs:  req.DurationMs,
		UploaderID:  req.UploaderID,
	}
	if len(req.Metadata) > 0 {
		record.RawMetadata = datatypes.JSON(req.Metadata)
	}

	if req.Original != nil {
		if err := s.saveObject(ctx, originalPath, *req.Original); err != nil {
			logger.CtxWithError(ctx, "Failed to store original evidence", err, "rental_id", req.RentalID, "path", originalPath)
			return nil, apperrors.StorageError(err)
		}
		record.OriginalStoragePath = &originalPath
	}
	if err := s.saveObject(ctx, mainPath, req.File); err != nil {
		logger.CtxWithError(ctx, "Failed to store evidence", err, "rental_id", req.RentalID, "path", mainPath)
		return nil, apperrors.StorageError(err)
	}

	// Повтор загрузки: запись уже есть, используем ее и все равно пересчитываем статус.
	if err := s.evidenceRepo.Append(scoped(ctx, db), record); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateEvidence) {
			return nil, apperrors.DatabaseError(err)
		}
		existing, err := s.evidenceRepo.FindByStoragePath(scoped(ctx, db), mainPath)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		record = existing
		logger.CtxInfo(ctx, "Evidence already recorded, replay accepted", "rental_id", req.RentalID, "path", mainPath)
	} else {
		logger.CtxInfo(ctx, "Evidence stored",
			"rental_id", req.RentalID, "phase", req.Phase, "party", party, "kind", req.Kind, "seq", req.Seq)
	}

	resp := &dto.UploadEvidenceResponse{Evidence: s.toResponse(ctx, record)}

	status, err := s.statusEngine.OnEvidenceUploaded(ctx, db, req.RentalID, req.Phase, req.UploaderID)
	if err != nil {
		// The record stays; the client retries the recomputation explicitly.
		logger.CtxWarn(ctx, "Evidence stored but status recompute failed",
			"rental_id", req.RentalID, "phase", req.Phase, "error", err.Error())
		resp.StatusPending = true
		return resp, err
	}
	resp.Status = status
	return resp, nil
}

func (s *evidenceService) ListEvidence(ctx context.Context, db *gorm.DB, requesterID, rentalID string, phase models.Phase, party models.Party) (*dto.EvidenceListResponse, error) {
	if phase != "" && !phase.Valid() {
		return nil, apperrors.ErrInvalidPhase
	}
	if party != "" && !party.Valid() {
		return nil, apperrors.ErrInvalidParty
	}

	rental, err := s.loadRental(ctx, db, rentalID)
	if err != nil {
		return nil, err
	}
	if len(rental.PartiesOf(requesterID)) == 0 {
		return nil, apperrors.ErrNotRentalParty
	}

	records, err := s.evidenceRepo.ListByRental(scoped(ctx, db), rentalID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	resp := &dto.EvidenceListResponse{Evidence: make([]*dto.EvidenceResponse, 0, len(records))}
	for i := range records {
		if phase != "" && records[i].Phase != phase {
			continue
		}
		if party != "" && records[i].Party != party {
			continue
		}
		resp.Evidence = append(resp.Evidence, s.toResponse(ctx, &records[i]))
	}
	resp.Total = len(resp.Evidence)
	return resp, nil
}

func (s *evidenceService) OpenFile(ctx context.Context, db *gorm.DB, requesterID, key string) (*dto.StoredFile, error) {
	key = strings.TrimPrefix(key, "/")
	rentalID, _, _ := strings.Cut(key, "/")
	if _, err := uuid.Parse(rentalID); err != nil {
		return nil, apperrors.ErrNotFound(err, "evidence", "File not found")
	}

	rental, err := s.loadRental(ctx, db, rentalID)
	if err != nil {
		return nil, err
	}
	if len(rental.PartiesOf(requesterID)) == 0 {
		return nil, apperrors.ErrNotRentalParty
	}

	body, err := s.storage.Get(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
			return nil, apperrors.ErrNotFound(err, "evidence", "File not found")
		}
		return nil, apperrors.StorageError(err)
	}

	contentType := "image/jpeg"
	if strings.HasSuffix(key, ".mp4") {
		contentType = "video/mp4"
	}
	size, err := s.storage.GetSize(ctx, key)
	if err != nil {
		size = -1
	}
	return &dto.StoredFile{Body: body, ContentType: contentType, Size: size}, nil
}

func (s *evidenceService) loadRental(ctx context.Context, db *gorm.DB, rentalID string) (*models.Rental, error) {
	rental, err := s.rentalRepo.FindByID(scoped(ctx, db), rentalID)
	if err != nil {
		if errors.Is(err, repositories.ErrRentalNotFound) {
			return nil, apperrors.ErrRentalNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	return rental, nil
}

// saveObject writes one object. The key is derived from the upload itself, so an
// existing object means an earlier attempt already stored this file.
func (s *evidenceService) saveObject(ctx context.Context, key string, file dto.EvidenceFile) error {
	err := s.storage.Save(ctx, key, file.Reader, file.MimeType)
	if errors.Is(err, storage.ErrObjectExists) {
		logger.CtxDebug(ctx, "Evidence object already stored", "path", key)
		return nil
	}
	return err
}

func (s *evidenceService) checkFile(kind models.EvidenceKind, file dto.EvidenceFile) error {
	if file.Reader == nil || file.Size <= 0 {
		return apperrors.NewBadRequestError("Evidence file is empty")
	}
	if s.limits.MaxSize > 0 && file.Size > s.limits.MaxSize {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"max_size": s.limits.MaxSize})
	}

	mime := strings.ToLower(file.MimeType)
	switch kind {
	case models.EvidencePhoto:
		if !strings.HasPrefix(mime, "image/") {
			return apperrors.ErrInvalidFileType
		}
	case models.EvidenceVideo:
		if !strings.HasPrefix(mime, "video/") {
			return apperrors.ErrInvalidFileType
		}
	}
	if len(s.limits.AllowedTypes) == 0 {
		return nil
	}
	for _, allowed := range s.limits.AllowedTypes {
		if strings.EqualFold(allowed, mime) {
			return nil
		}
	}
	return apperrors.ErrInvalidFileType
}

func (s *evidenceService) toResponse(ctx context.Context, record *models.EvidenceRecord) *dto.EvidenceResponse {
	resp := &dto.EvidenceResponse{EvidenceRecord: record}
	if url, err := s.storage.GetURL(ctx, record.StoragePath); err == nil {
		resp.URL = url
	}
	if record.OriginalStoragePath != nil {
		if url, err := s.storage.GetURL(ctx, *record.OriginalStoragePath); err == nil {
			resp.OriginalURL = url
		}
	}
	return resp
}

// EvidencePaths returns the object keys for an evidence file and its original copy:
// {rental}/{phase}/{party}/{unixMillis}_{seq}.{ext} and the same under original/.
func EvidencePaths(rentalID string, phase models.Phase, party models.Party, kind models.EvidenceKind, capturedAt time.Time, seq int) (string, string) {
	ext := "jpg"
	if kind == models.EvidenceVideo {
		ext = "mp4"
	}
	dir := fmt.Sprintf("%s/%s/%s", rentalID, phase, party)
	name := fmt.Sprintf("%d_%d.%s", capturedAt.UnixMilli(), seq, ext)
	return dir + "/" + name, dir + "/original/" + name
}
