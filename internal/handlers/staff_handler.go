package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/dtos"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/services"
	"github.com/hackcampus/apply-backend/internal/workflow"
)

// StaffHandler serves the matcher-facing views: application lists per
// pipeline stage, event feeds, and workflow actions.
type StaffHandler struct {
	Applications *services.ApplicationService
	Events       *services.EventService
	Companies    *services.CompanyService
}

func NewStaffHandler(applications *services.ApplicationService, events *services.EventService, companies *services.CompanyService) *StaffHandler {
	return &StaffHandler{Applications: applications, Events: events, Companies: companies}
}

// ListApplications is GET /applications?stage=.
func (h *StaffHandler) ListApplications(c *gin.Context) {
	stage := workflow.Stage(c.Query("stage"))
	apps, err := h.Applications.ListByStage(c.Request.Context(), stage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

type eventResponse struct {
	models.ApplicationEvent
	Label string `json:"label"`
}

// ListEvents is GET /applications/:id/events: the audit feed in timestamp
// order, each entry carrying its display label.
func (h *StaffHandler) ListEvents(c *gin.Context) {
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	events, err := h.Events.ListByApplication(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	feed := make([]eventResponse, 0, len(events))
	for _, event := range events {
		feed = append(feed, eventResponse{ApplicationEvent: event, Label: event.Type.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"events": feed})
}

// CreateEvent is POST /applications/:id/events. Known workflow types move
// the applicant through the pipeline; anything else lands as a comment.
func (h *StaffHandler) CreateEvent(c *gin.Context) {
	applicationID, ok := applicationIDParam(c)
	if !ok {
		return
	}
	actorID, _ := middleware.UserID(c)
	var req dtos.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	event, err := h.Events.Record(c.Request.Context(), actorID, applicationID, req.Type, req.Payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eventResponse{ApplicationEvent: *event, Label: event.Type.Label()})
}

type companyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// CreateCompany is POST /companies.
func (h *StaffHandler) CreateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	company, err := h.Companies.Create(c.Request.Context(), req.Name, req.Description, req.Website)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func applicationIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("invalid application id", []string{"id"}))
		return 0, false
	}
	return uint(id), true
}
