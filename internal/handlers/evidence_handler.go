package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"rentproof_backend/internal/imageprocessor"
	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/models"
	"rentproof_backend/internal/services"
	"rentproof_backend/internal/services/dto"
	"rentproof_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const multipartMemory = 32 << 20

type EvidenceHandler struct {
	*BaseHandler
	evidenceService services.EvidenceService
}

func NewEvidenceHandler(base *BaseHandler, evidenceService services.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{
		BaseHandler:     base,
		evidenceService: evidenceService,
	}
}

func (h *EvidenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	evidence := r.Group("/rentals/:rentalId/evidence")
	{
		evidence.POST("", h.UploadEvidence)
		evidence.GET("", h.ListEvidence)
	}
	r.GET("/files/*key", h.ServeFile)
}

// UploadEvidence - multipart: file, optional original, плюс поля UploadEvidenceForm.
// Answers 201, or 202 when the evidence is stored but the status is still pending.
func (h *EvidenceHandler) UploadEvidence(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to parse form: "+err.Error()))
		return
	}

	var form dto.UploadEvidenceForm
	if !h.BindAndValidate_Form(c, &form) {
		return
	}

	req := &dto.UploadEvidenceRequest{
		RentalID:   rentalID,
		UploaderID: partyID,
		PartyHint:  models.Party(form.Party),
		Phase:      models.Phase(form.Phase),
		Kind:       models.EvidenceKind(form.Kind),
		Seq:        form.Seq,
		Lat:        form.Lat,
		Lng:        form.Lng,
		Width:      form.Width,
		Height:     form.Height,
		DurationMs: form.DurationMs,
	}
	if form.Metadata != "" {
		req.Metadata = []byte(form.Metadata)
	}
	if form.CapturedAt != "" {
		capturedAt, err := time.Parse(time.RFC3339, form.CapturedAt)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid captured_at format. Use RFC3339"))
			return
		}
		req.CapturedAt = capturedAt
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided"))
		return
	}
	file, closeFile, err := openPart(fileHeader)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read file"))
		return
	}
	defer closeFile()
	req.File = file
	if req.Kind == models.EvidencePhoto && (req.Width == nil || req.Height == nil) {
		probeDimensions(c, req)
	}

	if originalHeader, err := c.FormFile("original"); err == nil {
		original, closeOriginal, err := openPart(originalHeader)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read original"))
			return
		}
		defer closeOriginal()
		req.Original = &original
	}

	resp, err := h.evidenceService.UploadEvidence(c.Request.Context(), h.GetDB(c), req)
	if err != nil {
		if resp != nil && resp.StatusPending {
			logger.CtxWarn(c.Request.Context(), "Evidence accepted with pending status", "error", err.Error())
			c.JSON(http.StatusAccepted, resp)
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *EvidenceHandler) ListEvidence(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}
	rentalID, ok := h.UUIDParam(c, "rentalId")
	if !ok {
		return
	}

	phase := models.Phase(c.Query("phase"))
	party := models.Party(c.Query("party"))

	resp, err := h.evidenceService.ListEvidence(c.Request.Context(), h.GetDB(c), partyID, rentalID, phase, party)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ServeFile отдает медиа из хранилища; the URL comes from the evidence listing.
func (h *EvidenceHandler) ServeFile(c *gin.Context) {
	partyID, ok := h.GetAndAuthorizePartyID(c)
	if !ok {
		return
	}

	stored, err := h.evidenceService.OpenFile(c.Request.Context(), h.GetDB(c), partyID, c.Param("key"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer stored.Body.Close()

	c.Header("Cache-Control", "private, max-age=86400")
	c.DataFromReader(http.StatusOK, stored.Size, stored.ContentType, stored.Body, nil)
}

// probeDimensions заполняет размеры фото из заголовка файла, если клиент их не прислал.
func probeDimensions(c *gin.Context, req *dto.UploadEvidenceRequest) {
	rs, ok := req.File.Reader.(io.ReadSeeker)
	if !ok {
		return
	}
	info, err := imageprocessor.ProbeSeeker(rs)
	if err != nil {
		logger.CtxDebug(c.Request.Context(), "Photo dimensions unavailable", "error", err.Error(), "mime", req.File.MimeType)
		return
	}
	req.Width, req.Height = &info.Width, &info.Height
}

// openPart opens an uploaded part. Without a Content-Type header the type is sniffed.
func openPart(header *multipart.FileHeader) (dto.EvidenceFile, func(), error) {
	f, err := header.Open()
	if err != nil {
		return dto.EvidenceFile{}, nil, err
	}
	closeFn := func() { f.Close() }

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := io.ReadFull(f, buf)
		mimeType = http.DetectContentType(buf[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			closeFn()
			return dto.EvidenceFile{}, nil, err
		}
	}

	return dto.EvidenceFile{Reader: f, Size: header.Size, MimeType: mimeType}, closeFn, nil
}
