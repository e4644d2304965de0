package handler

import (
	"errors"
	"net/http"

	"github.com/clipforge/clipforge/internal/api/middleware"
	"github.com/clipforge/clipforge/internal/domain"
	"github.com/gin-gonic/gin"
)

// DownloadHandler serves the JSON API over the same session operations as
// the HTML pages.
type DownloadHandler struct {
	workflow Workflow
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(workflow Workflow) *DownloadHandler {
	return &DownloadHandler{workflow: workflow}
}

// SessionResponse is the JSON view of a session.
type SessionResponse struct {
	Session     *domain.Session `json:"session"`
	Placeholder string          `json:"placeholder"`
	SubmitLabel string          `json:"submitLabel"`
	Error       string          `json:"error,omitempty"`
}

// PlatformInfo describes one supported platform.
type PlatformInfo struct {
	Name        domain.Platform `json:"name"`
	Slug        string          `json:"slug"`
	Placeholder string          `json:"placeholder"`
	Selectable  bool            `json:"selectable"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type tabRequest struct {
	Platform string `json:"platform" binding:"required"`
}

type pageRequest struct {
	Page string `json:"page"`
}

func newSessionResponse(sess *domain.Session) SessionResponse {
	resp := SessionResponse{
		Session:     sess,
		Placeholder: sess.ActiveTab.Placeholder(),
		SubmitLabel: "Download",
	}
	if sess.Loading {
		resp.SubmitLabel = "Processing"
	}
	return resp
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *DownloadHandler) ListPlatforms(c *gin.Context) {
	platforms := make([]PlatformInfo, 0, len(domain.AllPlatforms))
	for _, p := range domain.AllPlatforms {
		platforms = append(platforms, PlatformInfo{
			Name:        p,
			Slug:        p.Slug(),
			Placeholder: p.Placeholder(),
			Selectable:  p.IsSelectable(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}

// GetSession handles GET /api/v1/session.
func (h *DownloadHandler) GetSession(c *gin.Context) {
	sess, err := h.workflow.State(c.Request.Context(), middleware.GetSessionID(c))
	h.respond(c, sess, err)
}

// Submit handles POST /api/v1/download.
// A failed metadata lookup answers 422 with the user-facing message.
func (h *DownloadHandler) Submit(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	sess, err := h.workflow.Submit(c.Request.Context(), middleware.GetSessionID(c), req.URL)
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	if sess.Phase == domain.PhaseFetchFailed && sess.Error != "" {
		resp := newSessionResponse(sess)
		resp.Error = sess.Error
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Regenerate handles POST /api/v1/regenerate. The body is optional.
func (h *DownloadHandler) Regenerate(c *gin.Context) {
	var req urlRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}
	}
	sess, err := h.workflow.RegenerateCaption(c.Request.Context(), middleware.GetSessionID(c), req.URL)
	h.respond(c, sess, err)
}

// Dismiss handles DELETE /api/v1/result.
func (h *DownloadHandler) Dismiss(c *gin.Context) {
	sess, err := h.workflow.Dismiss(c.Request.Context(), middleware.GetSessionID(c))
	h.respond(c, sess, err)
}

// SelectTab handles PUT /api/v1/tab.
func (h *DownloadHandler) SelectTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.workflow.SelectTab(c.Request.Context(), middleware.GetSessionID(c), platform)
	h.respond(c, sess, err)
}

// Navigate handles PUT /api/v1/page.
func (h *DownloadHandler) Navigate(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	page, err := domain.ParsePage(req.Page)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.workflow.Navigate(c.Request.Context(), middleware.GetSessionID(c), page)
	h.respond(c, sess, err)
}

func (h *DownloadHandler) respond(c *gin.Context, sess *domain.Session, err error) {
	switch {
	case errors.Is(err, domain.ErrPlatformNotSelectable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Request failed: " + err.Error(),
		})
	default:
		c.JSON(http.StatusOK, newSessionResponse(sess))
	}
}
