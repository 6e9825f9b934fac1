package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mateluky/f1-race-intelligence/internal/app"
	"github.com/mateluky/f1-race-intelligence/internal/brief"
	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/model"
	"github.com/mateluky/f1-race-intelligence/internal/openf1"
)

// Response caps carried over from the original service limits.
const (
	sessionLimit     = 5
	raceControlLimit = 20
	lapLimit         = 30
)

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps facade errors onto HTTP statuses.
func statusFor(err error) int {
	if errors.Is(err, model.ErrDocumentNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Health(c.Request.Context()))
}

type textIngestRequest struct {
	Name string `json:"name"`
	Text string `json:"text" binding:"required"`
}

// ingest accepts either a multipart PDF upload under "file" or a JSON
// body {"name": ..., "text": ...}.
func (s *Server) ingest(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		s.ingestUpload(c)
		return
	}

	var req textIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("provide a multipart file or a JSON body with text"))
		return
	}
	if req.Name == "" {
		req.Name = "pasted-text"
	}

	doc, err := s.app.IngestText(c.Request.Context(), req.Name, req.Text)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) ingestUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("multipart form needs a file field"))
		return
	}

	// The upload keeps its client-side filename inside a temp dir: the
	// metadata heuristic reads year and GP name out of it.
	name := filepath.Base(file.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload.pdf"
	}
	tmpDir, err := os.MkdirTemp("", "f1ri-upload-")
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	doc, err := s.app.IngestPDF(c.Request.Context(), path)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.app.ListDocuments()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_count": len(docs),
		"documents":      docs,
	})
}

func (s *Server) deleteDocument(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.app.Document(id); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	if err := s.app.DeleteDocument(id); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "document_id": id})
}

type ragQueryRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question" binding:"required"`
	TopK       int    `json:"top_k"`
}

// ragQuery answers a question from one document's passages. Without a
// document_id it targets the newest ingested document.
func (s *Server) ragQuery(c *gin.Context) {
	var req ragQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("question is required"))
		return
	}

	docID := req.DocumentID
	if docID == "" {
		docs, err := s.app.ListDocuments()
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		if len(docs) == 0 {
			fail(c, http.StatusNotFound, errors.New("no documents ingested"))
			return
		}
		docID = docs[0].ID
	} else if _, err := s.app.Document(docID); err != nil {
		fail(c, statusFor(err), err)
		return
	}

	ans, err := s.app.Ask(c.Request.Context(), docID, req.Question, req.TopK)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id": docID,
		"question":    ans.Question,
		"answer":      ans.Answer,
		"sources":     ans.Sources,
	})
}

type documentRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

func (s *Server) extractClaims(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("document_id is required"))
		return
	}

	claims, err := s.app.ExtractClaims(c.Request.Context(), req.DocumentID)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id": req.DocumentID,
		"claim_count": len(claims),
		"claims":      claims,
	})
}

type sessionSearchRequest struct {
	Year        int    `json:"year" binding:"required"`
	GPName      string `json:"gp_name"`
	SessionType string `json:"session_type"`
}

func (s *Server) searchSession(c *gin.Context) {
	var req sessionSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("year is required"))
		return
	}
	if req.SessionType == "" {
		req.SessionType = "RACE"
	}

	sessions := s.app.Sessions(c.Request.Context(), req.Year, req.GPName, req.SessionType)
	telemetryFetches.WithLabelValues("sessions").Inc()
	if len(sessions) > sessionLimit {
		sessions = sessions[:sessionLimit]
	}
	c.JSON(http.StatusOK, gin.H{
		"year":          req.Year,
		"gp_name":       req.GPName,
		"session_type":  req.SessionType,
		"session_count": len(sessions),
		"sessions":      sessions,
	})
}

type collectionRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	DriverNumber int    `json:"driver_number"`
}

// collection builds a handler for one telemetry collection. limit 0
// returns everything.
func (s *Server) collection(name, key string, limit int) gin.HandlerFunc {
	fetch := s.collectionFetch(name)
	return func(c *gin.Context) {
		var req collectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, errors.New("session_id is required"))
			return
		}

		records := fetch(c.Request.Context(), req.SessionID, req.DriverNumber)
		telemetryFetches.WithLabelValues(name).Inc()
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": req.SessionID,
			"count":      len(records),
			key:          records,
		})
	}
}

func (s *Server) collectionFetch(name string) func(context.Context, string, int) []openf1.Record {
	telemetry := s.app.Telemetry()
	switch name {
	case "race_control":
		return func(ctx context.Context, id string, _ int) []openf1.Record {
			return telemetry.GetControlMessages(ctx, id)
		}
	case "laps":
		return telemetry.GetLaps
	case "stints":
		return telemetry.GetStints
	default:
		return telemetry.GetPitStops
	}
}

func (s *Server) buildTimeline(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("document_id is required"))
		return
	}

	start := time.Now()
	tl, err := s.app.BuildTimeline(c.Request.Context(), req.DocumentID)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	buildDuration.WithLabelValues("timeline").Observe(time.Since(start).Seconds())

	outcome := "resolved"
	if !tl.Diagnostics.SessionFound {
		outcome = "unresolved"
	}
	timelineBuilds.WithLabelValues(outcome).Inc()

	logging.Info("timeline built over http",
		"document", req.DocumentID, "events", len(tl.Events), "outcome", outcome)
	c.JSON(http.StatusOK, tl)
}

type buildBriefRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	Question   string `json:"question"`
}

type briefResponse struct {
	brief.Brief
	QuestionAnswer *app.Answer `json:"question_answer,omitempty"`
}

func (s *Server) buildBrief(c *gin.Context) {
	var req buildBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.New("document_id is required"))
		return
	}

	start := time.Now()
	b, err := s.app.BuildBrief(c.Request.Context(), req.DocumentID)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	buildDuration.WithLabelValues("brief").Observe(time.Since(start).Seconds())

	resp := briefResponse{Brief: b}
	if strings.TrimSpace(req.Question) != "" {
		if ans, askErr := s.app.Ask(c.Request.Context(), req.DocumentID, req.Question, 0); askErr == nil {
			resp.QuestionAnswer = &ans
		} else {
			logging.Warn("brief question answering failed", "error", askErr)
		}
	}

	logging.Info("brief built over http",
		"document", req.DocumentID, "claims", len(b.Claims))
	c.JSON(http.StatusOK, resp)
}
