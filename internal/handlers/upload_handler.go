package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 10 << 20

const (
	msgNoImage           = "Please attach an image."
	msgNotAnImage        = "Only image files can be uploaded."
	msgImageTooLarge     = "The image is too large."
	msgUploadUnavailable = "Image uploads are not available."
)

// ImageStore stores uploaded images and returns their public URL;
// firebase.StorageUploader implements it
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// UploadHandler accepts image uploads for avatars, logos, banners and attachments
type UploadHandler struct {
	store ImageStore
}

// NewUploadHandler creates an UploadHandler; a nil store disables uploads
func NewUploadHandler(store ImageStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group, gate *middleware.SessionGate) {
	g.POST("/upload", gate.Require(h.Upload))
}

// Upload stores the multipart "image" field and returns its URL
func (h *UploadHandler) Upload(c echo.Context, me *models.User) error {
	if h.store == nil {
		return message(c, msgUploadUnavailable)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return message(c, msgNoImage)
	}
	if fh.Size > MaxImageSize {
		return message(c, msgImageTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return serverError(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return serverError(c, err)
	}
	if len(data) > MaxImageSize {
		return message(c, msgImageTooLarge)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return message(c, msgNotAnImage)
	}

	name := fmt.Sprintf("images/%s/%s%s", me.ID.Hex(), uuid.NewString(), mtype.Extension())
	url, err := h.store.Upload(c.Request().Context(), name, mtype.String(), bytes.NewReader(data))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgSuccess, "url": url})
}
