package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer profiles.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create handles POST /customers. Non-admin callers may only create their
// own profile; an empty user_id defaults to the caller.
//
// @Summary      Create a customer profile
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCustomerRequest  true  "Customer"
// @Success      201   {object}  domain.Customer
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	var req createCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID := req.UserID
	switch {
	case userID == "":
		userID = who.UserID
	case userID != who.UserID && !who.IsAdmin():
		return echo.NewHTTPError(http.StatusForbidden, "cannot create a profile for another user")
	}
	cust, err := h.service.Create(c.Request().Context(), ports.CreateCustomerInput{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cust)
}

// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Customer
// @Router       /customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary      Search customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        name   query    string  false  "Name substring"
// @Param        email  query    string  false  "Email substring"
// @Success      200    {array}  domain.Customer
// @Router       /customers/search [get]
func (h *CustomerHandler) Search(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := h.service.Search(c.Request().Context(), ports.CustomerSearch{
		Name:  c.QueryParam("name"),
		Email: c.QueryParam("email"),
		Page:  page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Me handles GET /customers/me.
//
// @Summary      Caller's customer profile
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  errorResponse
// @Router       /customers/me [get]
func (h *CustomerHandler) Me(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	cust, err := h.service.Me(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  domain.Customer
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	cust, err := h.service.Get(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Customer id"
// @Param        body  body      updateCustomerRequest  true  "Fields to change"
// @Success      200   {object}  domain.Customer
// @Failure      403   {object}  errorResponse
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	var req updateCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cust, err := h.service.Update(c.Request().Context(), who, c.Param("id"), ports.UpdateCustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete handles DELETE /customers/:id. The customer's tickets are removed
// and their seats released.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id  path  string  true  "Customer id"
// @Success      204
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
