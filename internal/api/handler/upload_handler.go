package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// MaxUploadBytes caps the size of a single uploaded file.
const MaxUploadBytes = 10 << 20

type UploadHandler struct {
	service ports.UploadService
}

func NewUploadHandler(service ports.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /uploads.
//
// @Summary      Upload a file
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file    formData  file    true  "File (max 10 MiB)"
// @Param        folder  formData  string  true  "avatars, sessions or chat"
// @Success      201     {object}  envelope{data=uploadResponse}
// @Failure      400     {object}  map[string]any
// @Failure      422     {object}  map[string]any
// @Router       /uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ErrValidation.WithMessage("file is required")
	}
	if fh.Size > MaxUploadBytes {
		return domain.ErrValidation.WithMessage("file exceeds %d bytes", MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.service.Upload(c.Request().Context(), actor, c.FormValue("folder"), f)
	if err != nil {
		return err
	}
	return created(c, uploadResponse{URL: url})
}
