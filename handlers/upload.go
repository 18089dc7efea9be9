package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/storage"
)

const uploadField = "file"

// Upload stores one image from a multipart form. Storage failures degrade to
// a data URI in the response instead of an error.
func (h *Handler) Upload(c echo.Context) error {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return apperrors.BadRequest("No file uploaded")
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.BadRequest("Could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.BadRequest("Could not read uploaded file")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.svc.Uploader.Upload(ctx, header.Filename, data)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return apperrors.New(http.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrUnsupportedType):
		return apperrors.BadRequest(err.Error())
	case err != nil:
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
