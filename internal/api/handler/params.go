package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

func badQuery(name string) error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameter: "+name)
}

// pageParams reads skip and limit; the service layer clamps them.
func pageParams(c echo.Context) (ports.Page, error) {
	var p ports.Page
	if err := echo.QueryParamsBinder(c).Int("skip", &p.Skip).Int("limit", &p.Limit).BindError(); err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "invalid paging parameters")
	}
	return p, nil
}

func optInt(c echo.Context, name string) (*int, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	var v int
	if err := echo.QueryParamsBinder(c).Int(name, &v).BindError(); err != nil {
		return nil, badQuery(name)
	}
	return &v, nil
}

func optFloat(c echo.Context, name string) (*float64, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	var v float64
	if err := echo.QueryParamsBinder(c).Float64(name, &v).BindError(); err != nil {
		return nil, badQuery(name)
	}
	return &v, nil
}

func optBool(c echo.Context, name string) (*bool, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	var v bool
	if err := echo.QueryParamsBinder(c).Bool(name, &v).BindError(); err != nil {
		return nil, badQuery(name)
	}
	return &v, nil
}

// optTime accepts RFC 3339 timestamps.
func optTime(c echo.Context, name string) (*time.Time, error) {
	if c.QueryParam(name) == "" {
		return nil, nil
	}
	var v time.Time
	if err := echo.QueryParamsBinder(c).Time(name, &v, time.RFC3339).BindError(); err != nil {
		return nil, badQuery(name)
	}
	return &v, nil
}
