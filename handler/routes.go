package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/router"
	"github.com/ngoduykhanh/flatpost/store"
	"github.com/ngoduykhanh/flatpost/token"
	"github.com/ngoduykhanh/flatpost/util"
)

// Routes registers every endpoint of the service on d
func Routes(d *router.Dispatcher, db store.IStore, tokens *token.Service, hasher util.Hasher, tokenTTL time.Duration) {
	d.GET("/posts", GetPosts(db))
	d.GET("/posts/:id", GetPost(db))
	d.POST("/createpost", NewPost(db))
	d.PUT("/posts/:id", UpdatePost(db))
	d.PATCH("/posts/:id", PatchPost(db))
	d.DELETE("/posts/:id", RemovePost(db), Secured(tokens, model.RoleAdmin)...)

	d.POST("/register", Register(db, hasher))
	d.POST("/login", Login(db, tokens, hasher, tokenTTL))
	d.GET("/profile", Profile(), Authenticate(tokens))
}

// readJSON reads the whole (size limited) request body and decodes it into v
func readJSON(c echo.Context, v interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("cannot read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("cannot decode request body: %w", err)
	}
	return nil
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, model.Response{Success: false, Message: msg})
}
