package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/larderapp/larder/internal/infrastructure/config"
	"github.com/larderapp/larder/internal/ports/inbound"
	apperrors "github.com/larderapp/larder/pkg/errors"
)

const maxPhotoBytes = 10 << 20

// ImportHandlers serves the recipe ingestion endpoints. Clients supply
// the job id so they can open the progress websocket before firing the
// import request.
type ImportHandlers struct {
	imports  inbound.ImportService
	cfg      config.ImportConfig
	validate *validator.Validate
	logger   *zap.Logger
}

// NewImportHandlers creates new import handlers
func NewImportHandlers(imports inbound.ImportService, cfg config.ImportConfig, logger *zap.Logger) *ImportHandlers {
	return &ImportHandlers{
		imports:  imports,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

type importTextRequest struct {
	JobID         string `json:"job_id" validate:"required,uuid"`
	Text          string `json:"text" validate:"required"`
	SourceContext string `json:"source_context"`
}

type importURLRequest struct {
	JobID string `json:"job_id" validate:"required,uuid"`
	URL   string `json:"url" validate:"required,url"`
}

type generateRequest struct {
	JobID  string `json:"job_id" validate:"required,uuid"`
	Prompt string `json:"prompt" validate:"required"`
}

// FromText handles POST /api/v1/import/text
func (h *ImportHandlers) FromText(w http.ResponseWriter, r *http.Request) {
	var req importTextRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.imports.ImportFromText(r.Context(), inbound.ImportTextCommand{
		JobID:         uuid.MustParse(req.JobID),
		Text:          req.Text,
		SourceContext: req.SourceContext,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

// FromURL handles POST /api/v1/import/url
func (h *ImportHandlers) FromURL(w http.ResponseWriter, r *http.Request) {
	var req importURLRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.imports.ImportFromURL(r.Context(), inbound.ImportURLCommand{
		JobID: uuid.MustParse(req.JobID),
		URL:   req.URL,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

// FromPhotos handles POST /api/v1/import/photos as multipart form data.
// Fields: job_id, source_context (optional), photos (repeated file part).
func (h *ImportHandlers) FromPhotos(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.cfg.MaxPhotos) * maxPhotoBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid multipart form: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	jobID, err := uuid.Parse(r.FormValue("job_id"))
	if err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError("job_id must be a valid uuid"))
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, r, h.logger, apperrors.NewValidationError("at least one photo is required"))
		return
	}
	if len(files) > h.cfg.MaxPhotos {
		writeError(w, r, h.logger, apperrors.NewValidationError("too many photos"))
		return
	}

	photos := make([]inbound.PhotoInput, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			writeError(w, r, h.logger, apperrors.NewBadRequestError("failed to read photo"))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
		file.Close()
		if err != nil {
			writeError(w, r, h.logger, apperrors.NewBadRequestError("failed to read photo"))
			return
		}
		photos = append(photos, inbound.PhotoInput{
			Data:     data,
			MimeType: header.Header.Get("Content-Type"),
		})
	}

	result, err := h.imports.ImportFromPhotos(r.Context(), inbound.ImportPhotosCommand{
		JobID:         jobID,
		Photos:        photos,
		SourceContext: r.FormValue("source_context"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

// Generate handles POST /api/v1/generate
func (h *ImportHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.imports.GenerateRecipe(r.Context(), inbound.GenerateRecipeCommand{
		JobID:  uuid.MustParse(req.JobID),
		Prompt: req.Prompt,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}
