package auctions

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/streamcraft/auction-backend/internal/models"
	"github.com/streamcraft/auction-backend/pkg/response"
)

// CreateRequest is the body for POST /api/auctions. ID is optional; one is
// generated when omitted.
type CreateRequest struct {
	ID           string `json:"id"`
	Streamer     string `json:"streamer" binding:"required,min=1,max=100"`
	Title        string `json:"title" binding:"required,min=1,max=200"`
	TimerMinutes int    `json:"timer_minutes" binding:"required,gt=0,lte=1440"`
}

// UpdateRequest is the body for PUT /api/auctions/:id. Only drafts accept it.
type UpdateRequest struct {
	Streamer     *string `json:"streamer" binding:"omitempty,min=1,max=100"`
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	TimerMinutes *int    `json:"timer_minutes" binding:"omitempty,gt=0,lte=1440"`
}

// AdjustTimeRequest is the body for PATCH /api/auctions/:id/time. Seconds
// may be negative to shave time off, or zero for a no-op. A pointer keeps
// binding's required check from rejecting an explicit zero.
type AdjustTimeRequest struct {
	Seconds *int `json:"seconds" binding:"required"`
}

// Handler exposes the auction engine over HTTP.
type Handler struct {
	engine *Service
}

// NewHandler creates an auction handler.
func NewHandler(engine *Service) *Handler {
	return &Handler{engine: engine}
}

// Create handles POST /api/auctions.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	snap, err := h.engine.Create(CreateParams{
		ID:           req.ID,
		Streamer:     req.Streamer,
		Title:        req.Title,
		TimerMinutes: req.TimerMinutes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, snap)
}

// Update handles PUT /api/auctions/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	snap, err := h.engine.Update(c.Param("id"), UpdateParams{
		Streamer:     req.Streamer,
		Title:        req.Title,
		TimerMinutes: req.TimerMinutes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, snap)
}

// Start handles POST /api/auctions/:id/start.
func (h *Handler) Start(c *gin.Context) {
	h.command(c, h.engine.Start)
}

// Pause handles POST /api/auctions/:id/pause.
func (h *Handler) Pause(c *gin.Context) {
	h.command(c, h.engine.Pause)
}

// Resume handles POST /api/auctions/:id/resume.
func (h *Handler) Resume(c *gin.Context) {
	h.command(c, h.engine.Resume)
}

// Stop handles POST /api/auctions/:id/stop.
func (h *Handler) Stop(c *gin.Context) {
	h.command(c, h.engine.Stop)
}

// AdjustTime handles PATCH /api/auctions/:id/time.
func (h *Handler) AdjustTime(c *gin.Context) {
	var req AdjustTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	snap, err := h.engine.AdjustTime(c.Param("id"), *req.Seconds)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, snap)
}

// Get handles GET /api/auctions/:id.
func (h *Handler) Get(c *gin.Context) {
	snap, err := h.engine.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, snap)
}

// List handles GET /api/auctions.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.engine.List())
}

// Delete handles DELETE /api/auctions/:id.
func (h *Handler) Delete(c *gin.Context) {
	if err := h.engine.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// TopDonors handles GET /api/auctions/:id/donors/top?limit=n.
func (h *Handler) TopDonors(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	snap, err := h.engine.TopDonors(c.Param("id"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, snap)
}

// command runs a body-less lifecycle command against the :id auction.
func (h *Handler) command(c *gin.Context, op func(id string) (Snapshot, error)) {
	snap, err := op(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, snap)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var transition *models.InvalidTransitionError
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "auction not found")
	case errors.Is(err, ErrAlreadyExists):
		response.Conflict(c, "auction id already exists")
	case errors.As(err, &transition):
		response.Conflict(c, transition.Error())
	default:
		response.Internal(c, "internal error")
	}
}
