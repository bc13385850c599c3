package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngoduykhanh/flatpost/model"
)

func serve(t *testing.T, d *Dispatcher, method, target string, body io.Reader) (int, model.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	New(log.OFF, d).ServeHTTP(rec, httptest.NewRequest(method, target, body))

	var resp model.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

func reply(msg string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, model.Response{Success: true, Message: msg, Data: PathID(c)})
	}
}

func TestDispatcher_Matching(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/posts", reply("list"))
	d.GET("/posts/:id", reply("one"))
	d.DELETE("/posts/:id", reply("delete"))

	code, resp := serve(t, d, http.MethodGet, "/posts", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "list", resp.Message)

	code, resp = serve(t, d, http.MethodGet, "/posts/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "list", resp.Message)

	code, resp = serve(t, d, http.MethodGet, "/posts/17", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "one", resp.Message)
	assert.EqualValues(t, 17, resp.Data)

	code, resp = serve(t, d, http.MethodDelete, "/posts/3?force=1", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "delete", resp.Message)
	assert.EqualValues(t, 3, resp.Data)
}

func TestDispatcher_NotFound(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/posts/:id", reply("one"))

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/posts/abc"},
		{http.MethodGet, "/posts/1/comments"},
		{http.MethodGet, "/"},
		{http.MethodPost, "/posts/1"},
		{http.MethodGet, "/users"},
	} {
		code, resp := serve(t, d, tc.method, tc.target, nil)
		assert.Equal(t, http.StatusNotFound, code, tc.target)
		assert.False(t, resp.Success)
		assert.Equal(t, "Route not found", resp.Message)
	}
}

func TestDispatcher_FirstRegisteredRouteWins(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/posts/:id", reply("first"))
	d.GET("/posts/:id", reply("second"))

	_, resp := serve(t, d, http.MethodGet, "/posts/1", nil)
	assert.Equal(t, "first", resp.Message)
}

func TestDispatcher_HandlerError(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/fail", func(c echo.Context) error { return errors.New("disk on fire") })

	code, resp := serve(t, d, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Server error", resp.Message)
	assert.Equal(t, "disk on fire", resp.Error)
}

func TestDispatcher_Panic(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/panic", func(c echo.Context) error { panic("boom") })
	d.GET("/ok", reply("ok"))

	code, resp := serve(t, d, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error", resp.Message)
	assert.Contains(t, resp.Error, "boom")

	// the server keeps serving
	code, _ = serve(t, d, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDispatcher_MiddlewareError(t *testing.T) {
	d := NewDispatcher(1024)
	failing := func(c echo.Context, next Next) error { return errors.New("no session") }
	d.GET("/guarded", reply("guarded"), failing)

	code, resp := serve(t, d, http.MethodGet, "/guarded", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "no session", resp.Error)
}

func TestDispatcher_BodyLimit(t *testing.T) {
	d := NewDispatcher(16)
	d.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, model.Response{Success: true, Data: string(body)})
	})

	code, resp := serve(t, d, http.MethodPost, "/echo", strings.NewReader("short"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "short", resp.Data)

	code, resp = serve(t, d, http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "Request body too large", resp.Message)
}

func TestDispatcher_ErrorAfterResponseIsKept(t *testing.T) {
	d := NewDispatcher(1024)
	d.GET("/late", func(c echo.Context) error {
		if err := c.JSON(http.StatusAccepted, model.Response{Success: true}); err != nil {
			return err
		}
		return errors.New("too late")
	})

	code, resp := serve(t, d, http.MethodGet, "/late", nil)
	assert.Equal(t, http.StatusAccepted, code)
	assert.True(t, resp.Success)
}

func TestDispatcher_RejectsTwoDynamicSegments(t *testing.T) {
	d := NewDispatcher(1024)
	assert.Panics(t, func() { d.GET("/posts/:id/comments/:cid", reply("x")) })
}
