package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/ngoduykhanh/flatpost/model"
)

const pathIDKey = "path_id"

type route struct {
	method      string
	segments    []string
	param       int // index of the dynamic segment, -1 if none
	middlewares []Middleware
	handler     echo.HandlerFunc
}

// match reports whether path fits the route and returns the parsed integer
// of the dynamic segment, if any.
func (r *route) match(segments []string) (int, bool) {
	if len(segments) != len(r.segments) {
		return 0, false
	}
	id := 0
	for i, seg := range r.segments {
		if i == r.param {
			n, err := strconv.Atoi(segments[i])
			if err != nil {
				return 0, false
			}
			id = n
			continue
		}
		if seg != segments[i] {
			return 0, false
		}
	}
	return id, true
}

// Dispatcher owns the route table. It picks the first route matching the
// request method and path, runs the route's middleware chain and handler,
// and turns any failure into a JSON error reply.
type Dispatcher struct {
	routes    []*route
	bodyLimit int64
}

// NewDispatcher returns an empty Dispatcher accepting request bodies up to
// bodyLimit bytes.
func NewDispatcher(bodyLimit int64) *Dispatcher {
	return &Dispatcher{bodyLimit: bodyLimit}
}

// Add registers h for method and pattern. A pattern segment starting with ':'
// matches an integer, available to handlers through PathID. At most one
// such segment is allowed.
func (d *Dispatcher) Add(method, pattern string, h echo.HandlerFunc, m ...Middleware) {
	r := &route{
		method:      method,
		segments:    splitPath(pattern),
		param:       -1,
		middlewares: m,
		handler:     h,
	}
	for i, seg := range r.segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if r.param != -1 {
			panic(fmt.Sprintf("router: pattern %q has more than one dynamic segment", pattern))
		}
		r.param = i
	}
	d.routes = append(d.routes, r)
}

func (d *Dispatcher) GET(pattern string, h echo.HandlerFunc, m ...Middleware) {
	d.Add(http.MethodGet, pattern, h, m...)
}

func (d *Dispatcher) POST(pattern string, h echo.HandlerFunc, m ...Middleware) {
	d.Add(http.MethodPost, pattern, h, m...)
}

func (d *Dispatcher) PUT(pattern string, h echo.HandlerFunc, m ...Middleware) {
	d.Add(http.MethodPut, pattern, h, m...)
}

func (d *Dispatcher) PATCH(pattern string, h echo.HandlerFunc, m ...Middleware) {
	d.Add(http.MethodPatch, pattern, h, m...)
}

func (d *Dispatcher) DELETE(pattern string, h echo.HandlerFunc, m ...Middleware) {
	d.Add(http.MethodDelete, pattern, h, m...)
}

// Serve is the echo handler every request is funnelled through. It never
// returns an error: failures are answered here.
func (d *Dispatcher) Serve(c echo.Context) error {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			d.fail(c, fmt.Errorf("panic: %w", err))
		}
	}()

	req := c.Request()
	segments := splitPath(req.URL.Path)
	for _, r := range d.routes {
		if r.method != req.Method {
			continue
		}
		id, ok := r.match(segments)
		if !ok {
			continue
		}
		if r.param != -1 {
			c.Set(pathIDKey, id)
		}
		if req.Body != nil && d.bodyLimit > 0 {
			req.Body = http.MaxBytesReader(c.Response(), req.Body, d.bodyLimit)
		}
		if err := Run(c, r.middlewares, r.handler); err != nil {
			d.fail(c, err)
		}
		return nil
	}

	return c.JSON(http.StatusNotFound, model.Response{Success: false, Message: "Route not found"})
}

func (d *Dispatcher) fail(c echo.Context, err error) {
	req := c.Request()
	if c.Response().Committed {
		log.Errorf("%s %s failed after the response was sent: %v", req.Method, req.URL.Path, err)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		log.Warnf("%s %s rejected: body over %d bytes", req.Method, req.URL.Path, tooLarge.Limit)
		_ = c.JSON(http.StatusRequestEntityTooLarge, model.Response{Success: false, Message: "Request body too large"})
		return
	}

	log.Errorf("%s %s failed: %v", req.Method, req.URL.Path, err)
	_ = c.JSON(http.StatusInternalServerError, model.Response{
		Success: false,
		Message: "Server error",
		Error:   err.Error(),
	})
}

// PathID returns the integer matched by the route's dynamic segment
func PathID(c echo.Context) int {
	id, _ := c.Get(pathIDKey).(int)
	return id
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
