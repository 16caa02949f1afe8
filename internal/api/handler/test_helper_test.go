package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/api/middleware"
	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/infrastructure/jsonfile"
)

const testPrefix = "/api/clients"

// testEnv holds all test dependencies
type testEnv struct {
	db            *jsonfile.DB
	router        *gin.Engine
	clientService *service.ClientService
	clientHandler *ClientHandler
}

// setupTestEnv creates a test environment backed by a JSON document in a
// temporary directory
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := jsonfile.New(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Base time: Nov 1, 2025, one second per reading
	now := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	clientService := service.NewClientService(jsonfile.NewClientRepository(db), service.WithClock(clock))
	clientHandler := NewClientHandler(clientService, testPrefix)

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(slog.New(slog.DiscardHandler)))
	router.NoRoute(middleware.NotFoundHandler)

	clients := router.Group(testPrefix)
	clients.GET("", clientHandler.ListClients)
	clients.POST("", clientHandler.CreateClient)
	clients.GET("/autocomplete", clientHandler.Autocomplete)
	clients.GET("/:id", clientHandler.GetClient)
	clients.PATCH("/:id", clientHandler.UpdateClient)
	clients.DELETE("/:id", clientHandler.DeleteClient)

	return &testEnv{
		db:            db,
		router:        router,
		clientService: clientService,
		clientHandler: clientHandler,
	}
}

// seedTestData creates three clients and returns them in creation order
func (env *testEnv) seedTestData(t *testing.T) []*domain.Client {
	t.Helper()

	inputs := []map[string]any{
		{
			"name": "Ann", "surname": "Lee", "lastName": "Marie",
			"contacts": []any{map[string]any{"type": "Email", "value": "ann@example.com"}},
		},
		{
			"name": "Boris", "surname": "Petrov", "lastName": "",
			"contacts": []any{map[string]any{"type": "Telephone", "value": "+7 999 123 45 67"}},
		},
		{
			"name": "Clara", "surname": "Adams",
			"contacts": []any{},
		},
	}

	clients := make([]*domain.Client, 0, len(inputs))
	for _, input := range inputs {
		client, err := env.clientService.CreateClient(t.Context(), input)
		if err != nil {
			t.Fatalf("failed to seed client %v: %v", input["name"], err)
		}
		clients = append(clients, client)
	}
	return clients
}

// documentBytes returns the raw backing document
func (env *testEnv) documentBytes(t *testing.T) []byte {
	t.Helper()

	data, err := os.ReadFile(env.db.Path())
	if err != nil {
		t.Fatalf("failed to read backing document: %v", err)
	}
	return data
}

// makeRequest performs a request with an optional raw body and returns the
// response
func (env *testEnv) makeRequest(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// makeJSONRequest marshals payload and performs the request
func (env *testEnv) makeJSONRequest(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return env.makeRequest(t, method, path, string(body))
}

// parseClient parses the response body into a Client
func parseClient(t *testing.T, w *httptest.ResponseRecorder) domain.Client {
	t.Helper()

	var resp domain.Client
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseClientList parses the response body into a list of clients
func parseClientList(t *testing.T, w *httptest.ResponseRecorder) []domain.Client {
	t.Helper()

	var resp []domain.Client
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseValidationErrorResponse parses the response body into
// ValidationErrorResponse
func parseValidationErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ValidationErrorResponse {
	t.Helper()

	var resp dto.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse validation error response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// ids extracts client ids in order
func ids(clients []domain.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.ID
	}
	return out
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
