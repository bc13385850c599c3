package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/router"
	"github.com/ngoduykhanh/flatpost/store"
	"github.com/ngoduykhanh/flatpost/token"
	"github.com/ngoduykhanh/flatpost/util"
)

type registerPayload struct {
	Email    string `json:"email" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handler
func Register(db store.IStore, hasher util.Hasher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload registerPayload
		if err := readJSON(c, &payload); err != nil {
			return err
		}
		if err := c.Validate(payload); err != nil {
			log.Debugf("Rejected registration, missing %v", router.InvalidFields(err))
			return jsonError(c, http.StatusBadRequest, "All fields are required")
		}

		// cheap early exit; CreateUser repeats the check under the collection lock
		_, err := db.GetUserByEmail(payload.Email)
		if err == nil {
			return jsonError(c, http.StatusConflict, "User already exist")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("cannot look up user: %w", err)
		}

		hash, err := hasher.Hash(payload.Password)
		if errors.Is(err, util.ErrPasswordTooLong) {
			return jsonError(c, http.StatusBadRequest, "Password too long")
		}
		if err != nil {
			return err
		}

		user, err := db.CreateUser(model.User{
			Role:           model.RoleUser,
			Email:          payload.Email,
			Name:           payload.Name,
			HashedPassword: hash,
		})
		if errors.Is(err, store.ErrConflict) {
			return jsonError(c, http.StatusConflict, "User already exist")
		}
		if err != nil {
			return fmt.Errorf("cannot save user: %w", err)
		}
		log.Infof("Registered user %d (%s)", user.ID, user.Email)

		return c.JSON(http.StatusCreated, model.Response{Success: true, Message: "User registered successfully", Data: user})
	}
}

// Login handler exchanging credentials for an access token
func Login(db store.IStore, tokens *token.Service, hasher util.Hasher, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload loginPayload
		if err := readJSON(c, &payload); err != nil {
			return err
		}
		if err := c.Validate(payload); err != nil {
			return jsonError(c, http.StatusBadRequest, "All fields required")
		}

		user, err := db.GetUserByEmail(payload.Email)
		if errors.Is(err, store.ErrNotFound) {
			log.Warnf("Login attempt for unknown user %s", payload.Email)
			return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		}
		if err != nil {
			return fmt.Errorf("cannot look up user: %w", err)
		}

		if !hasher.Verify(payload.Password, user.HashedPassword) {
			log.Warnf("Incorrect password for user %s", user.Email)
			return jsonError(c, http.StatusUnauthorized, "Incorrect password")
		}

		tok, err := tokens.Issue(token.Claims{Email: user.Email, Role: user.Role}, ttl)
		if err != nil {
			return err
		}
		log.Infof("Logged in user %s", user.Email)

		return c.JSON(http.StatusOK, model.Response{Success: true, Message: "Login successful", Data: tok})
	}
}

// Profile handler returning the caller's token claims
func Profile() echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := currentClaims(c)
		if !ok {
			return errNoClaims
		}
		return c.JSON(http.StatusOK, model.Response{Success: true, Message: "Access granted", User: claims})
	}
}
