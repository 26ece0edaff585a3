package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrip_ForwardsPathQueryAndBody(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody, gotType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)

		w.Header().Set("Content-Disposition", `attachment; filename="canvas-layout.json"`)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"rejected":true}`))
	}))
	defer upstream.Close()

	app := fiber.New()
	app.All("/api/v1/layouts/*", Strip(upstream.URL, "/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/layouts/home/drop?trace=1", strings.NewReader(`{"type":"wall"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/layouts/home/drop", gotPath)
	assert.Equal(t, "trace=1", gotQuery)
	assert.Equal(t, `{"type":"wall"}`, gotBody)
	assert.Equal(t, "application/json", gotType)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "canvas-layout.json")
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"rejected":true}`, string(data))
}

func TestForward_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	app := fiber.New()
	app.Get("/catalog", ProxyTo(url+"/catalog"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
