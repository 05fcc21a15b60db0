package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// PlayHandler handles HTTP requests for plays.
type PlayHandler struct {
	service ports.PlayService
}

func NewPlayHandler(service ports.PlayService) *PlayHandler {
	return &PlayHandler{service: service}
}

// Create handles POST /plays.
//
// @Summary      Create a play
// @Tags         plays
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPlayRequest  true  "Play"
// @Success      201   {object}  domain.Play
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /plays [post]
func (h *PlayHandler) Create(c echo.Context) error {
	var req createPlayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	play, err := h.service.Create(c.Request().Context(), ports.CreatePlayInput{
		Title:           req.Title,
		Description:     req.Description,
		Genre:           req.Genre,
		DurationMinutes: req.DurationMinutes,
		DirectorID:      req.DirectorID,
		Actors:          req.Actors,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, play)
}

// List handles GET /plays.
//
// @Summary      List plays
// @Tags         plays
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {array}   domain.Play
// @Router       /plays [get]
func (h *PlayHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	plays, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plays)
}

// Search handles GET /plays/search.
//
// @Summary      Search plays
// @Tags         plays
// @Produce      json
// @Security     BearerAuth
// @Param        title         query     string  false  "Title substring"
// @Param        genre         query     string  false  "Genre substring"
// @Param        director_id   query     string  false  "Director id"
// @Param        actor_id      query     string  false  "Actor id"
// @Param        min_duration  query     int     false  "Minimum duration in minutes"
// @Param        max_duration  query     int     false  "Maximum duration in minutes"
// @Success      200           {array}   domain.Play
// @Router       /plays/search [get]
func (h *PlayHandler) Search(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	minDur, err := optInt(c, "min_duration")
	if err != nil {
		return err
	}
	maxDur, err := optInt(c, "max_duration")
	if err != nil {
		return err
	}
	plays, err := h.service.Search(c.Request().Context(), ports.PlaySearch{
		Title:       c.QueryParam("title"),
		Genre:       c.QueryParam("genre"),
		DirectorID:  c.QueryParam("director_id"),
		ActorID:     c.QueryParam("actor_id"),
		MinDuration: minDur,
		MaxDuration: maxDur,
		Page:        page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plays)
}

// Get handles GET /plays/:id.
//
// @Summary      Get a play
// @Tags         plays
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Play id"
// @Success      200  {object}  domain.Play
// @Failure      404  {object}  errorResponse
// @Router       /plays/{id} [get]
func (h *PlayHandler) Get(c echo.Context) error {
	play, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, play)
}

// Update handles PUT /plays/:id. Omitted fields are left unchanged.
//
// @Summary      Update a play
// @Tags         plays
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Play id"
// @Param        body  body      updatePlayRequest  true  "Fields to change"
// @Success      200   {object}  domain.Play
// @Failure      404   {object}  errorResponse
// @Router       /plays/{id} [put]
func (h *PlayHandler) Update(c echo.Context) error {
	var req updatePlayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	play, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdatePlayInput{
		Title:           req.Title,
		Description:     req.Description,
		Genre:           req.Genre,
		DurationMinutes: req.DurationMinutes,
		DirectorID:      req.DirectorID,
		Actors:          req.Actors,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, play)
}

// Delete handles DELETE /plays/:id. Showtimes and their tickets go with it.
//
// @Summary      Delete a play
// @Tags         plays
// @Security     BearerAuth
// @Param        id   path  string  true  "Play id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /plays/{id} [delete]
func (h *PlayHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
