package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/flood-response/internal/assist"
	"github.com/mr1hm/flood-response/internal/models"
	"github.com/mr1hm/flood-response/internal/repository"
	"github.com/mr1hm/flood-response/internal/stream"
)

type Handler struct {
	alerts      repository.AlertRepository
	resources   repository.ResourceRepository
	assist      *assist.Service
	broadcaster *stream.Broadcaster
	notifier    *stream.Notifier
}

func NewHandler(alerts repository.AlertRepository, resources repository.ResourceRepository,
	assistService *assist.Service, broadcaster *stream.Broadcaster, notifier *stream.Notifier) *Handler {
	return &Handler{
		alerts:      alerts,
		resources:   resources,
		assist:      assistService,
		broadcaster: broadcaster,
		notifier:    notifier,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, authRequired gin.HandlerFunc) {
	r.GET("/health", h.health)

	api := r.Group("/api", authRequired)
	api.GET("/alerts", h.listAlerts)
	api.POST("/alerts", h.createAlert)
	api.GET("/alerts/stream", h.streamAlerts)
	api.GET("/resources", h.listResources)
	api.POST("/resources", h.createResource)
	api.GET("/resources/stream", h.streamResources)
	api.POST("/resources/:id/match", h.matchResource)
	api.GET("/dashboard", h.dashboard)
	api.POST("/summarize", h.summarize)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createAlertRequest struct {
	Location string             `json:"location" binding:"required"`
	Status   models.AlertStatus `json:"status" binding:"required"`
	Severity models.Severity    `json:"severity" binding:"required"`
}

func (h *Handler) createAlert(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in to report an alert."})
		return
	}

	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location, status and severity are required."})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be observed, ongoing or resolved."})
		return
	}
	if !req.Severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Severity must be low, medium or high."})
		return
	}

	alert := &models.FloodAlert{
		ID:         uuid.NewString(),
		Location:   req.Location,
		Status:     req.Status,
		Severity:   req.Severity,
		CreatedAt:  time.Now().UTC(),
		ReportedBy: user.ID,
	}

	if err := h.alerts.AddAlert(c.Request.Context(), alert); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reporting flood alert. Please try again."})
		return
	}

	h.notifier.RecordCreated(stream.CollectionAlerts)
	c.JSON(http.StatusCreated, alert)
}

func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.alerts.ListAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

type createResourceRequest struct {
	Kind         models.ResourceKind `json:"kind" binding:"required"`
	Item         string              `json:"item" binding:"required"`
	Quantity     int                 `json:"quantity" binding:"required,gt=0"`
	Location     string              `json:"location" binding:"required"`
	Contact      string              `json:"contact" binding:"required"`
	Urgency      models.Urgency      `json:"urgency"`
	Availability models.Availability `json:"availability"`
}

func (h *Handler) createResource(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in to submit a resource."})
		return
	}

	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item, positive quantity, location and contact are required."})
		return
	}
	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be request or offer."})
		return
	}

	switch req.Kind {
	case models.ResourceKindRequest:
		if !req.Urgency.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Urgency must be low, medium or high."})
			return
		}
		req.Availability = ""
	case models.ResourceKindOffer:
		if !req.Availability.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Availability must be immediate, within 24 hours or within a week."})
			return
		}
		req.Urgency = ""
	}

	resource := &models.Resource{
		ID:           uuid.NewString(),
		Kind:         req.Kind,
		Item:         req.Item,
		Quantity:     req.Quantity,
		Location:     req.Location,
		Contact:      req.Contact,
		Urgency:      req.Urgency,
		Availability: req.Availability,
		Status:       models.ResourceStatusPending,
		CreatedAt:    time.Now().UTC(),
		UserID:       user.ID,
	}

	if err := h.resources.AddResource(c.Request.Context(), resource); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error submitting resource. Please try again."})
		return
	}

	h.notifier.RecordCreated(collectionFor(req.Kind))
	c.JSON(http.StatusCreated, resource)
}

func (h *Handler) listResources(c *gin.Context) {
	kind := models.ResourceKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be request or offer."})
		return
	}

	resources, err := h.resources.ListResources(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// dashboard is the home page's one-shot aggregate: all three collections,
// newest first.
func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	alerts, err := h.alerts.ListAlerts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	requests, err := h.resources.ListResources(ctx, models.ResourceKindRequest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}
	offers, err := h.resources.ListResources(ctx, models.ResourceKindOffer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":   alerts,
		"requests": requests,
		"offers":   offers,
	})
}

type summarizeRequest struct {
	Reports  string `json:"reports"`
	Language string `json:"language"`
}

func (h *Handler) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please paste some flood reports to summarize."})
		return
	}

	summary, err := h.assist.Summarize(c.Request.Context(), req.Reports, req.Language)
	if err != nil {
		if errors.Is(err, assist.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please paste some flood reports to summarize."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error generating summary. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) matchResource(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.resources.GetResourceByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resource"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	counterparts, err := h.resources.ListResources(ctx, record.Kind.Opposite())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}

	matches, err := h.assist.Match(ctx, record, counterparts)
	if err != nil {
		if errors.Is(err, assist.ErrMatchingBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "A matching request is already in progress."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error generating match. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func collectionFor(kind models.ResourceKind) stream.Collection {
	if kind == models.ResourceKindRequest {
		return stream.CollectionRequests
	}
	return stream.CollectionOffers
}
