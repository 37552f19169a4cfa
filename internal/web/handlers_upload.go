package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

// uploadResponse is the JSON body returned by imports and previews.
type uploadResponse struct {
	ImportID   string        `json:"import_id,omitempty"`
	FileName   string        `json:"file_name"`
	Accepted   int           `json:"accepted"`
	Rejected   int           `json:"rejected"`
	Errors     []string      `json:"errors"`
	Athletes   []athleteView `json:"athletes"`
	DurationMS int64         `json:"duration_ms"`
}

func viewOfUpload(res *core.UploadResult) uploadResponse {
	out := uploadResponse{
		ImportID:   res.ImportID,
		FileName:   res.FileName,
		Accepted:   res.Accepted,
		Rejected:   res.Rejected,
		Errors:     res.Errors,
		Athletes:   viewsOfAthletes(res.Athletes),
		DurationMS: res.Duration.Milliseconds(),
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return out
}

type sheetFunc func(r *http.Request, actor core.Actor, coachID int64, filename string, data []byte) (*core.UploadResult, error)

// readUpload pulls the spreadsheet out of a multipart form. The size cap
// applies to the whole request body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, int64, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, 0, err
		}
		return "", nil, 0, errBadRequest
	}

	var coachID int64
	if v := r.FormValue("coach_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", nil, 0, errBadRequest
		}
		coachID = id
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, 0, core.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, 0, err
	}
	return header.Filename, data, coachID, nil
}

func (s *Server) serveSheet(w http.ResponseWriter, r *http.Request, run sheetFunc) {
	filename, data, coachID, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	actor := s.actor(r)
	res, err := run(r, actor, targetCoach(actor, coachID), filename, data)
	if errors.Is(err, core.ErrStructural) && res != nil {
		// The file could not be read as a roster at all; the result carries
		// the single message explaining why.
		writeJSON(w, r, http.StatusBadRequest, viewOfUpload(res))
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewOfUpload(res))
}

// handleUpload imports a CSV or XLSX roster. Valid rows are committed even
// when other rows are rejected.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.serveSheet(w, r, func(r *http.Request, actor core.Actor, coachID int64, filename string, data []byte) (*core.UploadResult, error) {
		return s.service.UploadSheet(r.Context(), actor, coachID, filename, data)
	})
}

// handlePreview validates a roster without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.serveSheet(w, r, func(r *http.Request, actor core.Actor, coachID int64, filename string, data []byte) (*core.UploadResult, error) {
		return s.service.PreviewSheet(r.Context(), actor, coachID, filename, data)
	})
}
