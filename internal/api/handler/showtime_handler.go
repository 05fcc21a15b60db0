package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// ShowtimeHandler handles HTTP requests for showtimes.
type ShowtimeHandler struct {
	service ports.ShowtimeService
}

func NewShowtimeHandler(service ports.ShowtimeService) *ShowtimeHandler {
	return &ShowtimeHandler{service: service}
}

type availableSeatsResponse struct {
	ShowtimeID     string `json:"showtime_id"`
	AvailableSeats int    `json:"available_seats"`
}

// Create handles POST /showtimes.
//
// @Summary      Schedule a showtime
// @Tags         showtimes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShowtimeRequest  true  "Showtime"
// @Success      201   {object}  domain.Showtime
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /showtimes [post]
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req createShowtimeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.service.Create(c.Request().Context(), ports.CreateShowtimeInput{
		PlayID:         req.PlayID,
		DateTime:       req.DateTime,
		Venue:          req.Venue,
		AvailableSeats: req.AvailableSeats,
		Price:          req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

// @Summary      List showtimes
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Showtime
// @Router       /showtimes [get]
func (h *ShowtimeHandler) List(c echo.Context) error {
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

// Search handles GET /showtimes/search. Dates are RFC 3339.
//
// @Summary      Search showtimes
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Param        play_id    query    string  false  "Play id"
// @Param        venue      query    string  false  "Venue substring"
// @Param        min_date   query    string  false  "Earliest start"
// @Param        max_date   query    string  false  "Latest start"
// @Param        min_price  query    number  false  "Minimum price"
// @Param        max_price  query    number  false  "Maximum price"
// @Success      200        {array}  domain.Showtime
// @Failure      400        {object} errorResponse
// @Router       /showtimes/search [get]
func (h *ShowtimeHandler) Search(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	q := ports.ShowtimeSearch{
		PlayID: c.QueryParam("play_id"),
		Venue:  c.QueryParam("venue"),
		Page:   page,
	}
	if q.MinDate, err = optTime(c, "min_date"); err != nil {
		return err
	}
	if q.MaxDate, err = optTime(c, "max_date"); err != nil {
		return err
	}
	if q.MinPrice, err = optFloat(c, "min_price"); err != nil {
		return err
	}
	if q.MaxPrice, err = optFloat(c, "max_price"); err != nil {
		return err
	}
	list, err := h.service.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Upcoming handles GET /showtimes/upcoming.
//
// @Summary      Next showtimes by start time
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query    int  false  "How many (default 10)"
// @Success      200    {array}  domain.Showtime
// @Router       /showtimes/upcoming [get]
func (h *ShowtimeHandler) Upcoming(c echo.Context) error {
	limit, err := optInt(c, "limit")
	if err != nil {
		return err
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	list, err := h.service.Upcoming(c.Request().Context(), n)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary      Get a showtime
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Showtime id"
// @Success      200  {object}  domain.Showtime
// @Failure      404  {object}  errorResponse
// @Router       /showtimes/{id} [get]
func (h *ShowtimeHandler) Get(c echo.Context) error {
	st, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// @Summary      Remaining seats of a showtime
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Showtime id"
// @Success      200  {object}  availableSeatsResponse
// @Failure      404  {object}  errorResponse
// @Router       /showtimes/{id}/available_seats [get]
func (h *ShowtimeHandler) AvailableSeats(c echo.Context) error {
	id := c.Param("id")
	n, err := h.service.AvailableSeats(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availableSeatsResponse{ShowtimeID: id, AvailableSeats: n})
}

// @Summary      Update a showtime
// @Tags         showtimes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Showtime id"
// @Param        body  body      updateShowtimeRequest  true  "Fields to change"
// @Success      200   {object}  domain.Showtime
// @Failure      400   {object}  errorResponse
// @Router       /showtimes/{id} [put]
func (h *ShowtimeHandler) Update(c echo.Context) error {
	var req updateShowtimeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateShowtimeInput{
		PlayID:         req.PlayID,
		DateTime:       req.DateTime,
		Venue:          req.Venue,
		AvailableSeats: req.AvailableSeats,
		Price:          req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// UpdateSeats handles PUT /showtimes/:id/update_seats?seats_change=N.
// The change may be negative but never drives the count below zero.
//
// @Summary      Adjust remaining seats
// @Tags         showtimes
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Showtime id"
// @Param        seats_change  query     int     true  "Signed seat delta"
// @Success      200           {object}  domain.Showtime
// @Failure      400           {object}  errorResponse
// @Router       /showtimes/{id}/update_seats [put]
func (h *ShowtimeHandler) UpdateSeats(c echo.Context) error {
	var delta int
	if err := echo.QueryParamsBinder(c).MustInt("seats_change", &delta).BindError(); err != nil {
		return badQuery("seats_change")
	}
	st, err := h.service.AdjustSeats(c.Request().Context(), c.Param("id"), delta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// @Summary      Delete a showtime
// @Tags         showtimes
// @Security     BearerAuth
// @Param        id  path  string  true  "Showtime id"
// @Success      204
// @Router       /showtimes/{id} [delete]
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
