package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/btraven00/linksift/internal/batch"
	"github.com/btraven00/linksift/internal/logger"
)

type batchResponse struct {
	ID        string           `json:"id,omitempty"`
	Artifacts []batch.Artifact `json:"artifacts"`
}

type cleanResponse struct {
	Category   string   `json:"category"`
	Links      []string `json:"links"`
	Total      int      `json:"total"`
	AliveCount int      `json:"alive_count"`
	ElapsedMS  int64    `json:"elapsed_ms"`
	EstimateMS int64    `json:"estimate_ms"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createBatch sorts the raw request body into a new batch.
func (s *Server) createBatch(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	b := s.pipeline.SortText(data)
	if b.Empty() {
		c.JSON(http.StatusOK, batchResponse{Artifacts: []batch.Artifact{}})
		return
	}

	id := s.store.Create(b)
	s.log.Info("batch created",
		logger.String("batch_id", id),
		logger.Int("total", b.Len()),
	)

	c.JSON(http.StatusCreated, batchResponse{ID: id, Artifacts: b.Artifacts()})
}

func (s *Server) getBatch(c *gin.Context) {
	b, ok := s.lookupBatch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, batchResponse{ID: c.Param("id"), Artifacts: b.Artifacts()})
}

// deleteBatch consumes a batch.
func (s *Server) deleteBatch(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Consume(id); err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}

	s.log.Info("batch consumed", logger.String("batch_id", id))
	c.Status(http.StatusNoContent)
}

func (s *Server) getArtifact(c *gin.Context) {
	b, ok := s.lookupBatch(c)
	if !ok {
		return
	}

	category, links, err := b.Lookup(c.Param("category"))
	if err != nil {
		abortWithError(c, lookupStatus(err), err)
		return
	}

	artifact := batch.Artifact{Category: category, Title: category.Title(), FileName: category.FileName(), Links: links}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	c.Header("X-Link-Count", strconv.Itoa(len(links)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(artifact.Content()))
}

// cleanArtifact probes one artifact and returns the surviving links.
func (s *Server) cleanArtifact(c *gin.Context) {
	b, ok := s.lookupBatch(c)
	if !ok {
		return
	}

	result, err := s.pipeline.CleanCategory(c.Request.Context(), b, c.Param("category"))
	if err != nil {
		abortWithError(c, lookupStatus(err), err)
		return
	}

	report := result.Report
	s.log.Info("artifact cleaned",
		logger.String("batch_id", c.Param("id")),
		logger.String("category", string(result.Category)),
		logger.Int("total", report.Total),
		logger.Int("alive", report.AliveCount),
		logger.Duration("elapsed", report.Elapsed),
	)

	c.JSON(http.StatusOK, cleanResponse{
		Category:   string(result.Category),
		Links:      report.Alive,
		Total:      report.Total,
		AliveCount: report.AliveCount,
		ElapsedMS:  report.Elapsed.Milliseconds(),
		EstimateMS: s.pipeline.Estimate(report.Total).Milliseconds(),
	})
}

func (s *Server) lookupBatch(c *gin.Context) (*batch.LinkBatch, bool) {
	b, err := s.store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return nil, false
	}

	return b, true
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, batch.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, batch.ErrEmptyCategory), errors.Is(err, batch.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
