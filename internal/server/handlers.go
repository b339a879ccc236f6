package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/clausescope/internal/logging"
	"github.com/ppiankov/clausescope/internal/model"
	"github.com/ppiankov/clausescope/internal/pipeline"
)

// ErrTextTooLarge is reported when a request's text exceeds the configured limit
var ErrTextTooLarge = errors.New("text too large")

// bodyOverhead is the allowance for JSON framing and escapes on top of the text limit
const bodyOverhead = 64 * 1024

type textRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Clauses  []string        `json:"clauses"`
	Dates    []string        `json:"dates"`
	Analysis *model.Analysis `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Parser   string `json:"parser"`
	Strategy string `json:"strategy"`
	Uptime   string `json:"uptime"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Version:  s.version,
		Parser:   s.analyzer.ParserName(),
		Strategy: s.analyzer.Strategy(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	})
}

// readText binds the request body and enforces the text limits. It writes
// the error response itself and reports whether the handler may continue.
func (s *Server) readText(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.config.MaxTextBytes)+bodyOverhead)

	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, http.StatusRequestEntityTooLarge, ErrTextTooLarge, "TEXT_TOO_LARGE")
			return "", false
		}
		s.reject(c, http.StatusBadRequest, err, "INVALID_REQUEST")
		return "", false
	}

	if strings.TrimSpace(req.Text) == "" {
		s.reject(c, http.StatusBadRequest, pipeline.ErrEmptyInput, "EMPTY_TEXT")
		return "", false
	}
	if len(req.Text) > s.config.MaxTextBytes {
		s.reject(c, http.StatusRequestEntityTooLarge, ErrTextTooLarge, "TEXT_TOO_LARGE")
		return "", false
	}
	return req.Text, true
}

func (s *Server) reject(c *gin.Context, status int, err error, code string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Code: code})
}

// fail reports a collaborator failure without leaking its details
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	s.logger.Warn("analysis failed", logging.Error(err), logging.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Error: "analysis failed",
		Code:  "ANALYSIS_FAILED",
	})
}

func (s *Server) analyze(c *gin.Context) {
	text, ok := s.readText(c)
	if !ok {
		return
	}

	analysis, err := s.analyzer.ExtractClauses(c.Request.Context(), text)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.ClausesTotal.Add(float64(len(analysis.Clauses)))
	s.metrics.DatesTotal.Add(float64(len(analysis.Dates)))

	c.JSON(http.StatusOK, analyzeResponse{
		Clauses:  analysis.ClauseTexts(),
		Dates:    analysis.DateTexts(),
		Analysis: analysis,
	})
}

func (s *Server) highlight(c *gin.Context) {
	text, ok := s.readText(c)
	if !ok {
		return
	}

	h, err := s.analyzer.Highlight(c.Request.Context(), text)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.EntitiesTotal.Add(float64(h.Entities))
	s.metrics.DatesTotal.Add(float64(len(h.Dates)))

	c.JSON(http.StatusOK, h)
}
