package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/api/middleware"
	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

type addItemRequest struct {
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	VendorIDs   []string   `json:"vendor_ids"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type paymentRequest struct {
	Amount *float64 `json:"amount"`
	Status string   `json:"status"`
	Method string   `json:"method"`
}

type taskRequest struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

type ratingRequest struct {
	Score   *int   `json:"score"`
	Comment string `json:"comment"`
}

type notificationRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GetDashboard returns the caller's own dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	d, err := h.dashboardService.GetDashboard(c.Request.Context(), middleware.ScopedRole(c), middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AddItem creates a pending event or order on the caller's dashboard
func (h *DashboardHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.dashboardService.AddWorkItem(c.Request.Context(), middleware.ScopedRole(c), middleware.CallerID(c), service.NewWorkItem{
		ClientID:    req.ClientID,
		Title:       req.Title,
		ScheduledAt: req.ScheduledAt,
		VendorIDs:   req.VendorIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *DashboardHandler) SetItemStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.SetStatus(c.Request.Context(), middleware.ScopedRole(c), middleware.CallerID(c), c.Param("itemId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AddPayment appends a payment to one of the caller's work items
func (h *DashboardHandler) AddPayment(c *gin.Context) {
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.AppendPayment(c.Request.Context(), middleware.ScopedRole(c), middleware.CallerID(c), c.Param("itemId"), service.PaymentInput{
		Amount: req.Amount,
		Status: req.Status,
		Method: req.Method,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DashboardHandler) AddTask(c *gin.Context) {
	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.AddTask(c.Request.Context(), middleware.CallerID(c), c.Param("itemId"), req.Title, req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DashboardHandler) SetTaskStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.SetTaskStatus(c.Request.Context(), middleware.CallerID(c), c.Param("itemId"), c.Param("taskId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) MarkNotificationRead(c *gin.Context) {
	d, err := h.dashboardService.MarkNotificationRead(c.Request.Context(), middleware.ScopedRole(c), middleware.CallerID(c), c.Param("notificationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Rate records the caller's review of another user's dashboard. Only the
// public rating fields are returned.
func (h *DashboardHandler) Rate(c *gin.Context) {
	var req ratingRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.AppendOrUpdateRating(c.Request.Context(), middleware.ScopedRole(c), c.Param("ownerId"), domain.RatingInput{
		ReviewerID: middleware.CallerID(c),
		Score:      req.Score,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner_id":       d.OwnerID,
		"average_rating": d.AverageRating,
		"rating_count":   len(d.Ratings),
	})
}

// Notify posts a notification to another user's dashboard
func (h *DashboardHandler) Notify(c *gin.Context) {
	var req notificationRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.dashboardService.AppendNotification(c.Request.Context(), middleware.ScopedRole(c), c.Param("ownerId"), req.Message, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d.Notifications[len(d.Notifications)-1])
}

// TopRated lists the best rated planners or vendors
func (h *DashboardHandler) TopRated(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxTopLimit)
	}

	summaries, err := h.dashboardService.TopRated(c.Request.Context(), middleware.ScopedRole(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("dashboard request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
