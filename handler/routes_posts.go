package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/router"
	"github.com/ngoduykhanh/flatpost/store"
)

type postPayload struct {
	Title   string `json:"title" validate:"required"`
	Details string `json:"details" validate:"required"`
	Author  string `json:"author" validate:"required"`
}

// postPatch holds the fields a PATCH may change. Absent fields stay nil.
type postPatch struct {
	Title   *string `json:"title"`
	Details *string `json:"details"`
	Author  *string `json:"author"`
}

func (p postPatch) empty() bool {
	return p.Title == nil && p.Details == nil && p.Author == nil
}

func (p postPatch) apply(post model.Post) model.Post {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Details != nil {
		post.Details = *p.Details
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
	return post
}

// GetPosts handler
func GetPosts(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		posts, err := db.GetPosts()
		if err != nil {
			return fmt.Errorf("cannot fetch posts: %w", err)
		}
		return c.JSON(http.StatusOK, model.Response{Success: true, Data: posts})
	}
}

// GetPost handler
func GetPost(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		post, err := db.GetPostByID(router.PathID(c))
		if errors.Is(err, store.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "No post found")
		}
		if err != nil {
			return fmt.Errorf("cannot fetch post: %w", err)
		}
		return c.JSON(http.StatusOK, model.Response{Success: true, Data: post})
	}
}

// NewPost handler
func NewPost(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload postPayload
		if err := readJSON(c, &payload); err != nil {
			return err
		}
		if err := c.Validate(payload); err != nil {
			log.Debugf("Rejected new post, missing %v", router.InvalidFields(err))
			return jsonError(c, http.StatusBadRequest, "All fields required")
		}

		post, err := db.CreatePost(model.Post{
			Title:   payload.Title,
			Details: payload.Details,
			Author:  payload.Author,
		})
		if err != nil {
			return fmt.Errorf("cannot save post: %w", err)
		}
		log.Infof("Created post %d by %s", post.ID, post.Author)

		return c.JSON(http.StatusCreated, model.Response{Success: true, Message: "Post added successfully", Data: post})
	}
}

// UpdatePost handler to replace every field of a post
func UpdatePost(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload postPayload
		if err := readJSON(c, &payload); err != nil {
			return err
		}
		if err := c.Validate(payload); err != nil {
			log.Debugf("Rejected post update, missing %v", router.InvalidFields(err))
			return jsonError(c, http.StatusBadRequest, "All fields required")
		}

		post, err := db.UpdatePost(router.PathID(c), func(p model.Post) model.Post {
			p.Title = payload.Title
			p.Details = payload.Details
			p.Author = payload.Author
			return p
		})
		if errors.Is(err, store.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Post not found")
		}
		if err != nil {
			return fmt.Errorf("cannot update post: %w", err)
		}
		log.Infof("Replaced post %d", post.ID)

		return c.JSON(http.StatusOK, model.Response{Success: true, Message: "Post updated successfully", Data: post})
	}
}

// PatchPost handler to change some fields of a post
func PatchPost(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch postPatch
		if err := readJSON(c, &patch); err != nil {
			return err
		}
		if patch.empty() {
			return jsonError(c, http.StatusBadRequest, "No fields to update")
		}

		post, err := db.UpdatePost(router.PathID(c), patch.apply)
		if errors.Is(err, store.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Post not found")
		}
		if err != nil {
			return fmt.Errorf("cannot update post: %w", err)
		}
		log.Infof("Patched post %d", post.ID)

		return c.JSON(http.StatusOK, model.Response{Success: true, Message: "Post updated successfully", Data: post})
	}
}

// RemovePost handler
func RemovePost(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := router.PathID(c)
		removed, err := db.DeletePost(id)
		if err != nil {
			return fmt.Errorf("cannot delete post: %w", err)
		}
		if !removed {
			return jsonError(c, http.StatusNotFound, "Post not found")
		}

		if claims, ok := currentClaims(c); ok {
			log.Infof("Removed post %d (by %s)", id, claims.Email)
		}
		return c.JSON(http.StatusOK, model.Response{Success: true, Message: "Post deleted successfully"})
	}
}
