package handler

import (
	"github.com/gin-gonic/gin"

	"invoicer/internal/service"
)

// TemplateHandler handles email template endpoints.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create handles POST /api/v1/templates
// @Summary Create an email template
// @Tags templates
// @Accept json
// @Produce json
// @Param body body TemplateRequest true "Template"
// @Success 201 {object} Response{data=domain.EmailTemplate}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req TemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	tpl, err := h.templateService.Create(c.Request.Context(), &service.TemplateInput{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, tpl)
}

// List handles GET /api/v1/templates
// @Summary List email templates
// @Tags templates
// @Produce json
// @Success 200 {object} Response{data=[]domain.EmailTemplate}
// @Security BearerAuth
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, templates)
}

// GetByID handles GET /api/v1/templates/:id
// @Summary Get an email template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} Response{data=domain.EmailTemplate}
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Update handles PUT /api/v1/templates/:id
// @Summary Replace an email template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param body body TemplateRequest true "Template"
// @Success 200 {object} Response{data=domain.EmailTemplate}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	tpl, err := h.templateService.Update(c.Request.Context(), id, &service.TemplateInput{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Delete handles DELETE /api/v1/templates/:id
// @Summary Delete an email template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "template deleted"})
}
