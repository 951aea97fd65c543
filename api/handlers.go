package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/newspulse/internal/companies"
	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/engine"
	"github.com/seenimoa/newspulse/internal/report"
	"github.com/seenimoa/newspulse/internal/speech"
	"github.com/seenimoa/newspulse/internal/storage"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:    "OK",
			Message:   StatusMessage,
			WSClients: s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := companies.Load(s.cfg.Companies.File)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read company list: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CompaniesResponse{Companies: list},
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    rep,
	})
}

// Limits for request bodies and background speech synthesis.
const (
	maxAnalyzeBody = 1 << 20
	ttsTimeout     = 60 * time.Second
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company := strings.TrimSpace(req.Company)
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    engine.Analyze(company, req.Articles),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(chi.URLParam(r, "company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	rep, err := s.runner.RunCompany(ctx, company)
	if err != nil {
		var httpErr *datasource.ErrHTTP
		switch {
		case errors.Is(err, datasource.ErrNoArticles):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &httpErr):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			s.log.WithError(err).WithField("company", company).Error("refresh failed")
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    rep,
	})
}

// handleTTS serves the spoken verdict, synthesizing it on first request.
// Concurrent first requests for one company share a single synthesis.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	if s.speech == nil {
		writeError(w, http.StatusServiceUnavailable, "speech is not configured")
		return
	}

	path := s.audioPath(rep.Company)
	v, err, _ := s.audio.Do(path, func() (interface{}, error) {
		if data, err := os.ReadFile(path); err == nil {
			return data, nil
		}
		text := strings.TrimSpace(rep.FinalSentimentAnalysis)
		if text == "" {
			return nil, speech.ErrEmptyText
		}
		// Waiters share this call, so it must outlive the first requester.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), ttsTimeout)
		defer cancel()
		data, err := s.speech.Synthesize(ctx, text)
		if err != nil {
			return nil, err
		}
		if err := writeAudio(path, data); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("could not cache audio")
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, speech.ErrEmptyText) {
			writeError(w, http.StatusInternalServerError, "no sentiment summary available for TTS")
			return
		}
		s.log.WithError(err).WithField("company", rep.Company).Error("TTS conversion failed")
		writeError(w, http.StatusInternalServerError, "TTS conversion failed: "+err.Error())
		return
	}

	data := v.([]byte)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s_sentiment.mp3"`, utils.Slug(rep.Company)))
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	company := chi.URLParam(r, "company")
	rep, err := s.store.Load(r.Context(), company)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Report not found for the specified company.", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	opts := report.Options{AudioURL: "/api/v1/tts/" + url.PathEscape(rep.Company)}
	if err := report.Render(&buf, rep, report.FormatHTML, opts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// loadReport fetches the report named by the {company} URL parameter,
// writing the error response itself when there is none.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	company := strings.TrimSpace(chi.URLParam(r, "company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return nil, false
	}
	rep, err := s.store.Load(r.Context(), company)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found for the specified company")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "error reading report: "+err.Error())
		return nil, false
	}
	return rep, true
}

func (s *Server) audioPath(company string) string {
	lang := "hi"
	if s.speech != nil {
		lang = s.speech.Language()
	}
	return speech.AudioPath(s.cfg.Storage.Dir, company, lang)
}

func (s *Server) invalidateAudio(company string) {
	path := s.audioPath(company)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).WithField("path", path).Warn("could not remove stale audio")
	}
}

// writeAudio stores data at path via a temporary file so readers never see
// a partial MP3.
func writeAudio(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".audio-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
