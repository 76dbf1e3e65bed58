package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/haskel/runeconomy/internal/analysis"
	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/ingest"
	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/server/middleware"
	"github.com/haskel/runeconomy/internal/storage"
)

// Default and maximum page size of GET /v1/runs.
const (
	defaultRunsLimit = 50
	maxRunsLimit     = 1000
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Policy  string `json:"policy"`
	History bool   `json:"history"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type RunsResponse struct {
	Runs []storage.RunInfo `json:"runs"`
}

type HistoryResponse struct {
	SubjectID string                 `json:"subject_id"`
	Points    []storage.SubjectPoint `json:"points"`
}

var errHistoryDisabled = errors.New("run history is disabled")

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		Name:    "runeconomy",
		Version: s.version,
		Policy:  s.analyzer.Policy().String(),
		History: s.store != nil,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleAnalyze accepts a CSV export as the raw body or as the "file" part of
// a multipart form. Query parameters: min_power, max_power, source, save.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := parsePowerRange(query)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	data, source, err := readUpload(r)
	if err != nil {
		if middleware.IsTooLarge(err) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if name := query.Get("source"); name != "" {
		source = name
	}

	samples, err := ingest.Read(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, statusFor(err), err.Error())
		return
	}

	rep, err := s.analyzer.Run(r.Context(), analysis.Request{
		Samples: samples,
		Filter:  filter,
		Source:  source,
	})
	if err != nil {
		s.writeError(w, r, statusFor(err), err.Error())
		return
	}

	if s.store != nil && query.Get("save") != "false" {
		if err := s.store.SaveReport(r.Context(), rep); err != nil {
			s.logger.Error("failed to save report",
				"run_id", rep.ID,
				"error", err,
			)
			s.writeError(w, r, http.StatusInternalServerError, "failed to save report")
			return
		}
	}

	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusNotFound, errHistoryDisabled.Error())
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxRunsLimit))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, "failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []storage.RunInfo{}
	}

	s.writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusNotFound, errHistoryDisabled.Error())
		return
	}

	rep, err := s.store.GetReport(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to load run", err)
		return
	}

	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusNotFound, errHistoryDisabled.Error())
		return
	}

	err := s.store.DeleteRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to delete run", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubjectHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusNotFound, errHistoryDisabled.Error())
		return
	}

	id := r.PathValue("id")
	points, err := s.store.SubjectHistory(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "failed to load subject history", err)
		return
	}
	if points == nil {
		points = []storage.SubjectPoint{}
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{SubjectID: id, Points: points})
}

// readUpload returns the CSV bytes and, for multipart uploads, the file name.
func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return data, "", err
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", errors.New(`multipart form has no "file" part`)
		}
		if err != nil {
			return nil, "", err
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		return data, part.FileName(), err
	}
}

func parsePowerRange(query url.Values) (cohort.PowerRange, error) {
	var pr cohort.PowerRange
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"min_power", &pr.Min},
		{"max_power", &pr.Max},
	} {
		v := query.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pr, fmt.Errorf("%s: invalid number %q", p.name, v)
		}
		*p.dst = &f
	}
	return pr, pr.Validate()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, physio.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, physio.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		"request_id", middleware.RequestID(r.Context()),
		"error", err,
	)
	s.writeError(w, r, http.StatusInternalServerError, msg)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.RequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"failed to encode response"}`+"\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
