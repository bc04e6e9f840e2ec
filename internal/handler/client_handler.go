package handler

import (
	"github.com/gin-gonic/gin"

	"invoicer/internal/service"
)

// ClientHandler handles client management endpoints.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (r *ClientRequest) toInput() *service.ClientInput {
	return &service.ClientInput{
		Name:                 r.Name,
		Address:              r.Address,
		City:                 r.City,
		State:                r.State,
		PostalCode:           r.PostalCode,
		Country:              r.Country,
		TargetEmail:          r.TargetEmail,
		CCEmail:              r.CCEmail,
		Rate:                 r.Rate.String(),
		ReminderType:         r.ReminderType,
		EmailTemplateID:      r.EmailTemplateID,
		GoogleDriveFolderURL: r.GoogleDriveFolderURL,
		Terms:                r.Terms,
	}
}

// Create handles POST /api/v1/clients
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param body body ClientRequest true "Client"
// @Success 201 {object} Response{data=domain.Client}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Email template not found"
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, client)
}

// List handles GET /api/v1/clients
// @Summary List clients
// @Tags clients
// @Produce json
// @Success 200 {object} Response{data=[]domain.Client}
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, clients)
}

// GetByID handles GET /api/v1/clients/:id
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Response{data=domain.Client}
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Update handles PUT /api/v1/clients/:id
// @Summary Replace a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body ClientRequest true "Client"
// @Success 200 {object} Response{data=domain.Client}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Delete handles DELETE /api/v1/clients/:id
// @Summary Delete a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "client deleted"})
}
