package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

var allowedImageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// UploadsHandler stores and removes catalog images on local disk.
type UploadsHandler struct {
	cfg    config.UploadConfig
	logger *zap.Logger
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(cfg config.UploadConfig, logger *zap.Logger) *UploadsHandler {
	return &UploadsHandler{cfg: cfg, logger: logger}
}

// Upload handles POST /uploads.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file is required", nil)
	}
	if file.Size > h.cfg.MaxSizeBytes {
		return apperrors.NewValidationError("image exceeds the size limit", map[string]any{
			"maxSizeBytes": h.cfg.MaxSizeBytes,
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return apperrors.NewValidationError("unsupported image type: jpeg, jpg, png, gif or webp required", nil)
	}

	if err := os.MkdirAll(h.cfg.Dir, 0o755); err != nil {
		return apperrors.NewInternalError(err)
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.cfg.Dir, filename)); err != nil {
		return apperrors.NewInternalError(err)
	}

	h.logger.Info("image uploaded",
		zap.String("filename", filename),
		zap.Int64("size_bytes", file.Size),
	)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"filename": filename,
		"path":     h.cfg.PublicPrefix + "/" + filename,
	}})
}

// Delete handles DELETE /uploads/:filename.
func (h *UploadsHandler) Delete(c *fiber.Ctx) error {
	filename := c.Params("filename")
	// Reject anything that could escape the upload directory.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return apperrors.NewValidationError("invalid filename", nil)
	}

	path := filepath.Join(h.cfg.Dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFound("image", nil)
		}
		return apperrors.NewInternalError(err)
	}

	h.logger.Info("image deleted", zap.String("filename", filename))
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": filename}})
}
