package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// principal builds the caller identity from the claims the Auth middleware
// stored on the context. A missing subject or role means the middleware
// did not run, which is rejected with 401.
func principal(c echo.Context) (ports.Principal, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return ports.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	username, _ := c.Get("username").(string)
	return ports.Principal{UserID: userID, Username: username, Role: role}, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
