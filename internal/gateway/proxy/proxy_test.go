package proxy

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, upstream http.Handler) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	app := fiber.New()
	app.All("/api/v1/*", New(srv.URL, time.Second).Handler())
	return app
}

func TestUpstream_ForwardsPathQueryAndAuth(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotBody string
	app := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Disposition", `attachment; filename="Poster.svg"`)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`ok`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/s1/pointer/down?since=3", strings.NewReader(`{"x":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/v1/editor/s1/pointer/down", gotPath)
	assert.Equal(t, "since=3", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, `{"x":1}`, gotBody)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Poster.svg")
}

func TestUpstream_RebuildsMultipart(t *testing.T) {
	var gotName, gotFile, gotContent string
	app := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotName = r.FormValue("name")
		f, h, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotFile, gotContent = h.Filename, string(data)
		w.WriteHeader(http.StatusCreated)
	}))

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "Flyer.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("name", "Flyer"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/import", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Flyer", gotName)
	assert.Equal(t, "Flyer.json", gotFile)
	assert.Equal(t, "[]", gotContent)
}

func TestUpstream_Unreachable(t *testing.T) {
	app := fiber.New()
	app.All("/api/v1/*", New("http://127.0.0.1:1", 200*time.Millisecond).Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestUpstream_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/ready" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	u := New(srv.URL+"/", time.Second)
	assert.NoError(t, u.Ping("/health/ready"))
	assert.Error(t, u.Ping("/health/other"))
}
