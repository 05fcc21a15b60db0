package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry a purchase without booking twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// TicketHandler handles HTTP requests for tickets.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// Create handles POST /tickets. A replayed Idempotency-Key returns the
// first ticket with 200 instead of 201.
//
// @Summary      Buy a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Retry key"
// @Param        body             body      createTicketRequest  true   "Ticket"
// @Success      201              {object}  domain.Ticket
// @Success      200              {object}  domain.Ticket
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.service.Create(c.Request().Context(), who, ports.CreateTicketInput{
		ShowtimeID:     req.ShowtimeID,
		CustomerID:     req.CustomerID,
		SeatNumber:     req.SeatNumber,
		Price:          req.Price,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}
	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, res.Ticket)
	}
	return c.JSON(http.StatusCreated, res.Ticket)
}

// @Summary      List tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Ticket
// @Router       /tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
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

// @Summary      Search tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        showtime_id  query    string  false  "Showtime id"
// @Param        customer_id  query    string  false  "Customer id"
// @Param        is_used      query    bool    false  "Used flag"
// @Success      200          {array}  domain.Ticket
// @Router       /tickets/search [get]
func (h *TicketHandler) Search(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	used, err := optBool(c, "is_used")
	if err != nil {
		return err
	}
	list, err := h.service.Search(c.Request().Context(), ports.TicketSearch{
		ShowtimeID: c.QueryParam("showtime_id"),
		CustomerID: c.QueryParam("customer_id"),
		IsUsed:     used,
		Page:       page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Mine handles GET /tickets/my-tickets.
//
// @Summary      Caller's tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Ticket
// @Failure      404  {object} errorResponse
// @Router       /tickets/my-tickets [get]
func (h *TicketHandler) Mine(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.service.Mine(c.Request().Context(), who)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary      Get a ticket
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket id"
// @Success      200  {object}  domain.Ticket
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	who, err := principal(c)
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.Request().Context(), who, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /tickets/:id. Moving a ticket to another showtime
// releases the old seat and claims a new one.
//
// @Summary      Update a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Ticket id"
// @Param        body  body      updateTicketRequest  true  "Fields to change"
// @Success      200   {object}  domain.Ticket
// @Failure      409   {object}  errorResponse
// @Router       /tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	var req updateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateTicketInput{
		ShowtimeID: req.ShowtimeID,
		CustomerID: req.CustomerID,
		SeatNumber: req.SeatNumber,
		Price:      req.Price,
		IsUsed:     req.IsUsed,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// MarkUsed handles PUT /tickets/:id/mark-used.
//
// @Summary      Mark a ticket as used
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Ticket id"
// @Success      200  {object}  domain.Ticket
// @Failure      409  {object}  errorResponse
// @Router       /tickets/{id}/mark-used [put]
func (h *TicketHandler) MarkUsed(c echo.Context) error {
	t, err := h.service.MarkUsed(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// @Summary      Delete a ticket
// @Tags         tickets
// @Security     BearerAuth
// @Param        id  path  string  true  "Ticket id"
// @Success      204
// @Router       /tickets/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
