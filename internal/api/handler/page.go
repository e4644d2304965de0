package handler

import (
	"bytes"
	"context"
	"net/http"

	"github.com/clipforge/clipforge/internal/api/middleware"
	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/view"
	"github.com/gin-gonic/gin"
)

// Workflow is the set of session operations the handlers drive.
type Workflow interface {
	State(ctx context.Context, sessionID string) (*domain.Session, error)
	Submit(ctx context.Context, sessionID, url string) (*domain.Session, error)
	RegenerateCaption(ctx context.Context, sessionID, url string) (*domain.Session, error)
	Dismiss(ctx context.Context, sessionID string) (*domain.Session, error)
	SelectTab(ctx context.Context, sessionID string, platform domain.Platform) (*domain.Session, error)
	Navigate(ctx context.Context, sessionID string, page domain.Page) (*domain.Session, error)
}

// PageHandler serves the HTML site. Form posts redirect back to a page so a
// reload never resubmits.
type PageHandler struct {
	workflow Workflow
	renderer *view.Renderer
}

// NewPageHandler creates a new page handler.
// Parameters:
//   - workflow: session operations.
//   - renderer: HTML renderer.
// Returns:
//   - *PageHandler: initialized handler.
func NewPageHandler(workflow Workflow, renderer *view.Renderer) *PageHandler {
	return &PageHandler{
		workflow: workflow,
		renderer: renderer,
	}
}

// Show returns a handler for GET requests of page.
func (h *PageHandler) Show(page domain.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.workflow.Navigate(c.Request.Context(), middleware.GetSessionID(c), page)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.render(c, sess)
	}
}

// Download handles POST /download.
func (h *PageHandler) Download(c *gin.Context) {
	_, err := h.workflow.Submit(c.Request.Context(), middleware.GetSessionID(c), c.PostForm("url"))
	h.redirect(c, err, "/")
}

// Regenerate handles POST /regenerate.
func (h *PageHandler) Regenerate(c *gin.Context) {
	_, err := h.workflow.RegenerateCaption(c.Request.Context(), middleware.GetSessionID(c), c.PostForm("url"))
	h.redirect(c, err, "/#result")
}

// Dismiss handles POST /dismiss.
func (h *PageHandler) Dismiss(c *gin.Context) {
	_, err := h.workflow.Dismiss(c.Request.Context(), middleware.GetSessionID(c))
	h.redirect(c, err, "/")
}

// SelectTab handles POST /tab.
func (h *PageHandler) SelectTab(c *gin.Context) {
	platform, err := domain.ParsePlatform(c.PostForm("platform"))
	if err != nil || !platform.IsSelectable() {
		c.String(http.StatusBadRequest, "Unknown platform")
		return
	}
	_, err = h.workflow.SelectTab(c.Request.Context(), middleware.GetSessionID(c), platform)
	h.redirect(c, err, "/")
}

func (h *PageHandler) redirect(c *gin.Context, err error, location string) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (h *PageHandler) render(c *gin.Context, sess *domain.Session) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, h.renderer.PageData(sess)); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.CtxError(c.Request.Context(), "Page request failed: error=%v", err)
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}
