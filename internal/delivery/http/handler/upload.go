package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"telehealth-portal/internal/usecase"
)

const defaultMaxUploadBytes = 10 << 20

var errFileTooLarge = errors.New("file exceeds the upload limit")

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readFormFile reads the named part of a multipart request. A missing part
// returns nil without error.
func readFormFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*usecase.FileUpload, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	// room for the other form fields on top of the file
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, errFileTooLarge
		}
		return nil, err
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, errFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, errFileTooLarge
	}
	return &usecase.FileUpload{Filename: header.Filename, Data: data}, nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
