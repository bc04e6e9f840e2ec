package handler

import (
	"github.com/gin-gonic/gin"

	"invoicer/internal/domain"
	"invoicer/internal/service"
)

// SettingsHandler handles the business settings endpoints.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /api/v1/settings
// @Summary Get business settings
// @Description Returns the business profile, or an empty profile when none has been saved.
// @Tags settings
// @Produce json
// @Success 200 {object} Response{data=domain.BusinessSettings}
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, settings)
}

// Save handles PUT /api/v1/settings
// @Summary Save business settings
// @Description Updates the business profile, creating it on first save.
// @Tags settings
// @Accept json
// @Produce json
// @Param body body SettingsRequest true "Business settings"
// @Success 200 {object} Response{data=domain.BusinessSettings}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /settings [put]
func (h *SettingsHandler) Save(c *gin.Context) {
	var req SettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.settingsService.Save(c.Request.Context(), &domain.BusinessSettings{
		CompanyName:     req.CompanyName,
		OwnerName:       req.OwnerName,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Email:           req.Email,
		Phone:           req.Phone,
		BeneficiaryName: req.BeneficiaryName,
		BeneficiaryCNPJ: req.BeneficiaryCNPJ,
		SwiftCode:       req.SwiftCode,
		BankName:        req.BankName,
		BankAddress:     req.BankAddress,
		RoutingNumber:   req.RoutingNumber,
		AccountNumber:   req.AccountNumber,
		AccountType:     req.AccountType,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, settings)
}
