package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"groovy/core/apperr"
	"groovy/service"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 32 << 20

// parseMultipart limits the body to the configured upload size and parses it.
func (h *APIHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if h.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.BadRequest("Maximum upload size exceeded")
		}
		return apperr.BadRequest("Failed to parse multipart form: %v", err)
	}
	return nil
}

// formFile returns the named file part, or nil when it was not sent.
// The caller closes the returned file.
func formFile(r *http.Request, name string) (*service.Upload, multipart.File, error) {
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.BadRequest("Failed to read '%s' part: %v", name, err)
	}
	return &service.Upload{Filename: header.Filename, Size: header.Size, Reader: file}, file, nil
}

// jsonPart decodes a JSON form part. Clients may send it as a plain field
// or as a file part with an application/json content type.
func jsonPart(r *http.Request, name string, v interface{}) (bool, error) {
	var raw io.Reader
	if values := r.MultipartForm.Value[name]; len(values) > 0 {
		raw = strings.NewReader(values[0])
	} else if files := r.MultipartForm.File[name]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return false, apperr.BadRequest("Failed to read '%s' part: %v", name, err)
		}
		defer f.Close()
		raw = f
	} else {
		return false, nil
	}
	if err := json.NewDecoder(raw).Decode(v); err != nil {
		return false, apperr.BadRequest("Malformed JSON in '%s' part", name)
	}
	return true, nil
}
