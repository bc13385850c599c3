package router

import "github.com/labstack/echo/v4"

// Next lets a middleware hand the request on to the rest of the chain
type Next func()

// Middleware is one step of a route's chain. To pass the request on it calls
// next; to stop the chain it writes a response and returns without calling it.
type Middleware func(c echo.Context, next Next) error

// Run executes chain in order and then h. The first middleware that returns
// without calling next ends the run. Errors are returned to the caller
// untouched.
func Run(c echo.Context, chain []Middleware, h echo.HandlerFunc) error {
	for _, mw := range chain {
		proceed := false
		if err := mw(c, func() { proceed = true }); err != nil {
			return err
		}
		if !proceed {
			return nil
		}
	}
	return h(c)
}
