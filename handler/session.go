package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ngoduykhanh/flatpost/token"
)

const claimsKey = "claims"

func setClaims(c echo.Context, claims *token.Claims) {
	c.Set(claimsKey, claims)
}

// currentClaims returns the identity attached by Authenticate
func currentClaims(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*token.Claims)
	return claims, ok && claims != nil
}
