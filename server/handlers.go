package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/formfill"
	"github.com/tsawler/formfill/format"
	"github.com/tsawler/formfill/profile"
)

// requestError carries the status to answer with.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error {
	return e.err
}

func badRequest(msg string, err error) error {
	return &requestError{status: http.StatusBadRequest, msg: msg, err: err}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}

	template, name, err := formFile(r, "template", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := s.profileText(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	photo, _, err := formFile(r, "photo", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.filler.Fill(r.Context(), template, text, photo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filledName(name)})
	w.Header().Set("Content-Type", format.DOCX.ContentType())
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	template, _, err := formFile(r, "template", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.filler.Inspect(template)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return badRequest("invalid multipart form", err)
	}
	return nil
}

// formFile reads an uploaded file. A missing optional file yields nil.
func formFile(r *http.Request, field string, required bool) ([]byte, string, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return nil, "", badRequest("missing "+field+" file", nil)
		}
		return nil, "", nil
	}
	if err != nil {
		return nil, "", badRequest("reading "+field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", badRequest("reading "+field, err)
	}
	return data, header.Filename, nil
}

// profileText takes the profile from the "profile" text field or, failing
// that, from an uploaded "profile" file.
func (s *Server) profileText(r *http.Request) (string, error) {
	if text := strings.TrimSpace(r.FormValue("profile")); text != "" {
		return text, nil
	}

	data, name, err := formFile(r, "profile", false)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", badRequest("missing profile", nil)
	}
	text, err := profile.Load(data, name, profile.WithOCRLanguage(s.cfg.OCRLanguage))
	if err != nil {
		return "", badRequest("unreadable profile", err)
	}
	return text, nil
}

func filledName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "form"
	}
	return base + "_filled" + format.DOCX.Extension()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var reqErr *requestError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
		msg = fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit)
	case errors.As(err, &reqErr):
		status = reqErr.status
		msg = reqErr.Error()
	case errors.Is(err, formfill.ErrInvalidTemplate):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, formfill.ErrInvalidPhoto):
		status = http.StatusBadRequest
		msg = err.Error()
	}

	log := s.logger.With(zap.String("path", r.URL.Path), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Info("request rejected", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
