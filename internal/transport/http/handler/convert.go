package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/documentor-api/internal/application/converter"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/middleware"
)

type convertResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	Filename       string  `json:"filename"`
	DigitizedImage string  `json:"digitized_image"`
	ProcessingTime float64 `json:"processing_time"`
	ModelUsed      string  `json:"model_used"`
}

type ConvertHandler struct {
	svc      converter.Service
	maxBytes int64
}

func NewConvertHandler(svc converter.Service, maxBytes int64) *ConvertHandler {
	return &ConvertHandler{svc: svc, maxBytes: maxBytes}
}

// Convert accepts a multipart upload with an "image" file and an optional
// "model" field.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d bytes", h.maxBytes))
			return
		}
		httpError(w, r, fmt.Errorf("invalid multipart form: %w", domain.ErrBadRequest))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		httpError(w, r, fmt.Errorf("image is required: %w", domain.ErrBadRequest))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, r, err)
		return
	}

	res, err := h.svc.Convert(r.Context(), converter.Input{
		UserID:   u.UserID,
		Filename: header.Filename,
		Model:    r.FormValue("model"),
		Data:     data,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Success:        true,
		Message:        "Image digitized successfully",
		Filename:       res.Filename,
		DigitizedImage: base64.StdEncoding.EncodeToString(res.Output),
		ProcessingTime: res.ProcessingTime.Seconds(),
		ModelUsed:      res.Model,
	})
}
