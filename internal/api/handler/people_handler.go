package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

// ActorHandler handles HTTP requests for actors.
type ActorHandler struct {
	service ports.ActorService
}

func NewActorHandler(service ports.ActorService) *ActorHandler {
	return &ActorHandler{service: service}
}

// Create handles POST /actors.
//
// @Summary      Create an actor
// @Tags         actors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createActorRequest  true  "Actor"
// @Success      201   {object}  domain.Actor
// @Failure      404   {object}  errorResponse
// @Router       /actors [post]
func (h *ActorHandler) Create(c echo.Context) error {
	var req createActorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := h.service.Create(c.Request().Context(), ports.CreateActorInput{
		Name:        req.Name,
		Bio:         req.Bio,
		DateOfBirth: req.DateOfBirth,
		Plays:       req.Plays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, actor)
}

// @Summary      List actors
// @Tags         actors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Actor
// @Router       /actors [get]
func (h *ActorHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	actors, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actors)
}

// @Summary      Search actors
// @Tags         actors
// @Produce      json
// @Security     BearerAuth
// @Param        name     query    string  false  "Name substring"
// @Param        play_id  query    string  false  "Play id"
// @Success      200      {array}  domain.Actor
// @Router       /actors/search [get]
func (h *ActorHandler) Search(c echo.Context) error {
	q, err := peopleSearch(c)
	if err != nil {
		return err
	}
	actors, err := h.service.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actors)
}

// @Summary      Get an actor
// @Tags         actors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Actor id"
// @Success      200  {object}  domain.Actor
// @Failure      404  {object}  errorResponse
// @Router       /actors/{id} [get]
func (h *ActorHandler) Get(c echo.Context) error {
	actor, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}

// @Summary      Update an actor
// @Tags         actors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Actor id"
// @Param        body  body      updateActorRequest  true  "Fields to change"
// @Success      200   {object}  domain.Actor
// @Router       /actors/{id} [put]
func (h *ActorHandler) Update(c echo.Context) error {
	var req updateActorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateActorInput{
		Name:        req.Name,
		Bio:         req.Bio,
		DateOfBirth: req.DateOfBirth,
		Plays:       req.Plays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}

// @Summary      Delete an actor
// @Tags         actors
// @Security     BearerAuth
// @Param        id  path  string  true  "Actor id"
// @Success      204
// @Router       /actors/{id} [delete]
func (h *ActorHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DirectorHandler handles HTTP requests for directors.
type DirectorHandler struct {
	service ports.DirectorService
}

func NewDirectorHandler(service ports.DirectorService) *DirectorHandler {
	return &DirectorHandler{service: service}
}

// Create handles POST /directors. Listed plays are reassigned to the new director.
//
// @Summary      Create a director
// @Tags         directors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDirectorRequest  true  "Director"
// @Success      201   {object}  domain.Director
// @Router       /directors [post]
func (h *DirectorHandler) Create(c echo.Context) error {
	var req createDirectorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	director, err := h.service.Create(c.Request().Context(), ports.CreateDirectorInput{
		Name:  req.Name,
		Bio:   req.Bio,
		Plays: req.Plays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, director)
}

// @Summary      List directors
// @Tags         directors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Director
// @Router       /directors [get]
func (h *DirectorHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	directors, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, directors)
}

// @Summary      Search directors
// @Tags         directors
// @Produce      json
// @Security     BearerAuth
// @Param        name     query    string  false  "Name substring"
// @Param        play_id  query    string  false  "Play id"
// @Success      200      {array}  domain.Director
// @Router       /directors/search [get]
func (h *DirectorHandler) Search(c echo.Context) error {
	q, err := peopleSearch(c)
	if err != nil {
		return err
	}
	directors, err := h.service.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, directors)
}

// @Summary      Get a director
// @Tags         directors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Director id"
// @Success      200  {object}  domain.Director
// @Router       /directors/{id} [get]
func (h *DirectorHandler) Get(c echo.Context) error {
	director, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, director)
}

// @Summary      Update a director
// @Tags         directors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Director id"
// @Param        body  body      updateDirectorRequest  true  "Fields to change"
// @Success      200   {object}  domain.Director
// @Router       /directors/{id} [put]
func (h *DirectorHandler) Update(c echo.Context) error {
	var req updateDirectorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	director, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateDirectorInput{
		Name:  req.Name,
		Bio:   req.Bio,
		Plays: req.Plays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, director)
}

// @Summary      Delete a director
// @Tags         directors
// @Security     BearerAuth
// @Param        id  path  string  true  "Director id"
// @Success      204
// @Router       /directors/{id} [delete]
func (h *DirectorHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func peopleSearch(c echo.Context) (ports.PeopleSearch, error) {
	page, err := pageParams(c)
	if err != nil {
		return ports.PeopleSearch{}, err
	}
	return ports.PeopleSearch{
		Name:   c.QueryParam("name"),
		PlayID: c.QueryParam("play_id"),
		Page:   page,
	}, nil
}
