package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/search"
	"github.com/martijn/clientbook/internal/core/service"
)

// MaxBodyBytes caps request bodies on write endpoints
const MaxBodyBytes = 1 << 20

type ClientHandler struct {
	clientService *service.ClientService
	prefix        string
}

// NewClientHandler creates a handler serving clients under prefix. The prefix
// is used to build the Location header of created clients.
func NewClientHandler(clientService *service.ClientService, prefix string) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		prefix:        prefix,
	}
}

// ListClients handles GET /clients
// Query parameters:
//   - search: case-insensitive substring over names and contacts
//   - order: comma-separated field|direction pairs, e.g. fio|asc,createdAt|desc
func (h *ClientHandler) ListClients(c *gin.Context) {
	order, err := search.ParseOrder(c.Query("order"))
	if err != nil {
		_ = c.Error(service.BadRequest("Invalid order parameter", err))
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), service.ListOptions{
		Search: c.Query("search"),
		Order:  order,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// Autocomplete handles GET /clients/autocomplete
func (h *ClientHandler) Autocomplete(c *gin.Context) {
	summaries, err := h.clientService.Autocomplete(c.Request.Context(), c.Query("query"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	raw, err := readObject(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", h.prefix+"/"+client.ID)
	c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PATCH /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	raw, err := readObject(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.EmptyResponse{})
}

// readObject decodes the request body as a JSON object. An empty body reads
// as an empty object.
func readObject(c *gin.Context) (map[string]any, error) {
	if c.Request.Body == nil {
		return map[string]any{}, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, service.NewServiceError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return nil, service.BadRequest("Invalid JSON body", err)
	}

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, service.BadRequest("Invalid JSON body", err)
	}
	if raw == nil {
		return nil, service.NewServiceError(http.StatusBadRequest, "Invalid JSON body")
	}
	return raw, nil
}
