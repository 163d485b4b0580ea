package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/dtos"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/models"
	"github.com/hackcampus/apply-backend/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: applications}
}

type applicationResponse struct {
	models.Application
	TechPreferences map[string]int `json:"techPreferences"`
}

// Get is GET /users/:userId/application.
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		respondError(c, apperrors.Validation("invalid user id", []string{"userId"}))
		return
	}
	app, err := h.Applications.GetByUserID(c.Request.Context(), uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	prefs, err := h.Applications.TechPreferences(c.Request.Context(), app.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationResponse{Application: *app, TechPreferences: prefs})
}

// GetMine is GET /me/application: a redirect to the canonical per-user URL.
func (h *ApplicationHandler) GetMine(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/application", userID))
}

// Put is PUT /me/application. The body is a partial update; a finished:true
// marker additionally runs the completeness check and, when it passes, the
// finish transition. An incomplete finish still keeps the partial update.
func (h *ApplicationHandler) Put(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req dtos.ApplicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	app, err := h.Applications.UpdateApplication(c.Request.Context(), userID, req.Patch())
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Finished {
		check := services.VerifyFinished(app)
		if !check.Finished {
			c.JSON(http.StatusBadRequest, gin.H{"errors": check.Missing})
			return
		}
		app, err = h.Applications.FinishApplication(c.Request.Context(), app)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, app)
}

// PutTechPreferences is PUT /me/application/techpreferences. The body is a
// technology→preference map; the response is the full map after the write.
func (h *ApplicationHandler) PutTechPreferences(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var prefs map[string]int
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var bad []string
	for technology, preference := range prefs {
		if technology == "" || preference < 0 || preference > 3 {
			bad = append(bad, technology)
		}
	}
	if len(bad) > 0 {
		respondError(c, apperrors.Validation("preference must be between 0 and 3", bad))
		return
	}
	result, err := h.Applications.UpdateTechPreferences(c.Request.Context(), userID, prefs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
