package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func recordStep(trace *[]string, name string) Middleware {
	return func(c echo.Context, next Next) error {
		*trace = append(*trace, name)
		next()
		return nil
	}
}

func TestRun_ExecutesInOrder(t *testing.T) {
	var trace []string
	h := func(c echo.Context) error {
		trace = append(trace, "handler")
		return nil
	}

	err := Run(newTestContext(), []Middleware{recordStep(&trace, "a"), recordStep(&trace, "b")}, h)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "handler"}, trace)
}

func TestRun_StopsWhenNextIsNotCalled(t *testing.T) {
	var trace []string
	stop := func(c echo.Context, next Next) error {
		trace = append(trace, "stop")
		return c.NoContent(http.StatusUnauthorized)
	}
	h := func(c echo.Context) error {
		trace = append(trace, "handler")
		return nil
	}

	c := newTestContext()
	err := Run(c, []Middleware{recordStep(&trace, "a"), stop, recordStep(&trace, "b")}, h)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "stop"}, trace)
	assert.Equal(t, http.StatusUnauthorized, c.Response().Status)
}

func TestRun_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	handlerCalled := false
	failing := func(c echo.Context, next Next) error {
		next()
		return boom
	}

	err := Run(newTestContext(), []Middleware{failing}, func(c echo.Context) error {
		handlerCalled = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, handlerCalled)

	err = Run(newTestContext(), nil, func(c echo.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
