package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/wizard"
)

// uploadError is a request that never reached the wizard.
type uploadError struct {
	message string
	code    int
}

func (e *uploadError) Error() string { return e.message }

// HandleUpload accepts a multipart file or a JSON {"image_url": ...} body and returns the session view.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var (
		up  images.Upload
		err error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		up, err = h.readURLUpload(r)
	} else {
		up, err = h.readFileUpload(w, r)
	}
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	h.writeJSON(w, h.wizard.SelectFile(r.Context(), session, up))
}

// HandleUploadForm is the browser form variant of HandleUpload.
func (h *Handler) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	up, err := h.readFileUpload(w, r)
	if err != nil {
		view := h.wizard.View(session)
		h.renderPage(w, view, &wizard.Result{Level: wizard.LevelError, Message: err.Error()}, statusFor(err))
		return
	}

	h.wizard.SelectFile(r.Context(), session, up)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) readFileUpload(w http.ResponseWriter, r *http.Request) (images.Upload, error) {
	// multipart overhead on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return images.Upload{}, &uploadError{
					message: fmt.Sprintf("File too large (max %d MB)", h.maxUploadBytes/(1024*1024)),
					code:    http.StatusRequestEntityTooLarge,
				}
			}
			return images.Upload{}, &uploadError{message: "Failed to read file: " + err.Error(), code: http.StatusBadRequest}
		}
	}
	defer file.Close()

	format, err := images.ParseFormat(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		return images.Upload{}, &uploadError{message: err.Error(), code: http.StatusBadRequest}
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return images.Upload{}, &uploadError{message: "Failed to read file contents: " + err.Error(), code: http.StatusBadRequest}
	}
	if int64(len(data)) > h.maxUploadBytes {
		return images.Upload{}, &uploadError{
			message: fmt.Sprintf("File too large (max %d MB)", h.maxUploadBytes/(1024*1024)),
			code:    http.StatusRequestEntityTooLarge,
		}
	}

	return images.Upload{Filename: header.Filename, Format: format, Data: data}, nil
}

func (h *Handler) readURLUpload(r *http.Request) (images.Upload, error) {
	var request struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return images.Upload{}, &uploadError{message: "Invalid JSON: " + err.Error(), code: http.StatusBadRequest}
	}
	if request.ImageURL == "" {
		return images.Upload{}, &uploadError{message: "image_url is required", code: http.StatusBadRequest}
	}

	up, err := h.fetcher.Fetch(r.Context(), request.ImageURL)
	if err != nil {
		return images.Upload{}, &uploadError{message: "Failed to process image URL: " + err.Error(), code: http.StatusBadRequest}
	}
	return up, nil
}

func statusFor(err error) int {
	var ue *uploadError
	if errors.As(err, &ue) {
		return ue.code
	}
	return http.StatusBadRequest
}
