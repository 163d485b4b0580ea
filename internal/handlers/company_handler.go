package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackcampus/apply-backend/internal/dtos"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/services"
)

type CompanyHandler struct {
	Companies *services.CompanyService
}

func NewCompanyHandler(companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{Companies: companies}
}

// List is GET /companies: the companies taking interns this year.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.Companies.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// PutPreferences is PUT /me/companypreferences.
func (h *CompanyHandler) PutPreferences(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req dtos.CompanyPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	pref, err := h.Companies.SubmitPreferences(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
