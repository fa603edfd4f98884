package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Kavirubc/gh-riskradar/internal/risk"
	"github.com/Kavirubc/gh-riskradar/pkg/models"
)

const maxSimilarLimit = 50

// ScoreResponse is the body of POST /v1/score
type ScoreResponse struct {
	*models.RiskResult
	Suggestions []string `json:"suggestions,omitempty"`
}

// SimilarRequest is the body of POST /v1/similar
type SimilarRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

// SimilarResponse is the body returned by POST /v1/similar
type SimilarResponse struct {
	Matches []models.Match `json:"matches"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var pr models.PRRecord
	if !s.decode(w, r, &pr) {
		return
	}

	result, err := s.engine.ScorePR(r.Context(), pr)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPR) {
			respondError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		s.logger.Error("scoring failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "scoring failed")
		return
	}

	respondJSON(w, http.StatusOK, ScoreResponse{
		RiskResult:  result,
		Suggestions: risk.Suggest(pr, result),
	})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "Bad Request", "text is required")
		return
	}
	if req.Limit < 0 || req.Limit > maxSimilarLimit {
		respondError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("limit must be between 0 and %d", maxSimilarLimit))
		return
	}

	matches, err := s.engine.Similar(r.Context(), req.Text, req.Limit)
	if err != nil {
		s.logger.Warn("similarity search failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "Service Unavailable", "corpus unavailable")
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	respondJSON(w, http.StatusOK, SimilarResponse{Matches: matches})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Summary(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v, writing the error response on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, "Bad Request", "request body is empty")
	default:
		respondError(w, http.StatusBadRequest, "Bad Request", "invalid JSON: "+err.Error())
	}
	return false
}
