package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(path string) error

func (f pingerFunc) Ping(path string) error { return f(path) }

func TestReadinessProbe(t *testing.T) {
	tests := []struct {
		name   string
		ping   error
		status int
	}{
		{"studio up", nil, http.StatusOK},
		{"studio down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var asked string
			app := fiber.New()
			app.Get("/health/ready", ReadinessProbe(pingerFunc(func(path string) error {
				asked = path
				return tt.ping
			})))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "/health/ready", asked)
		})
	}
}

func TestOpenAPIJSON(t *testing.T) {
	data, err := OpenAPIJSON()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Contains(t, doc.Paths, "/editor/{sid}/pointer/{phase}")
	assert.Contains(t, doc.Paths["/projects"], "post")
}
