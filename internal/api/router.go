package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/slconcert/theatre-system/docs"
	"github.com/slconcert/theatre-system/internal/api/handler"
	"github.com/slconcert/theatre-system/internal/api/middleware"
	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Auth      ports.AuthService
	Plays     ports.PlayService
	Actors    ports.ActorService
	Directors ports.DirectorService
	Showtimes ports.ShowtimeService
	Customers ports.CustomerService
	Tickets   ports.TicketService

	// Health lists the dependencies probed by /health/ready.
	Health map[string]handler.Pinger

	JWTSecret string
	// RateLimit is the per-client request rate; zero disables limiting.
	RateLimit float64
	// Metrics exposes /metrics and records HTTP metrics when set.
	Metrics bool
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if deps.Metrics {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace: "theatre",
			Skipper:   infraPath,
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	if deps.RateLimit > 0 {
		e.Use(echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Skipper: infraPath,
			Store:   echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.RateLimit)),
		}))
	}

	// --- Health probes and docs (no auth required) ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(deps.JWTSecret)
	admin := middleware.RBAC(domain.RoleAdmin)
	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleStaff)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/register", authHandler.Register)
	e.POST("/token", authHandler.Token)
	e.GET("/users/me", authHandler.Me, authn)

	// --- Catalog: reads for any authenticated user, writes for admins ---
	plays := handler.NewPlayHandler(deps.Plays)
	g := e.Group("/plays", authn)
	g.GET("", plays.List)
	g.GET("/search", plays.Search)
	g.GET("/:id", plays.Get)
	g.POST("", plays.Create, admin)
	g.PUT("/:id", plays.Update, admin)
	g.DELETE("/:id", plays.Delete, admin)

	actors := handler.NewActorHandler(deps.Actors)
	g = e.Group("/actors", authn)
	g.GET("", actors.List)
	g.GET("/search", actors.Search)
	g.GET("/:id", actors.Get)
	g.POST("", actors.Create, admin)
	g.PUT("/:id", actors.Update, admin)
	g.DELETE("/:id", actors.Delete, admin)

	directors := handler.NewDirectorHandler(deps.Directors)
	g = e.Group("/directors", authn)
	g.GET("", directors.List)
	g.GET("/search", directors.Search)
	g.GET("/:id", directors.Get)
	g.POST("", directors.Create, admin)
	g.PUT("/:id", directors.Update, admin)
	g.DELETE("/:id", directors.Delete, admin)

	showtimes := handler.NewShowtimeHandler(deps.Showtimes)
	g = e.Group("/showtimes", authn)
	g.GET("", showtimes.List)
	g.GET("/search", showtimes.Search)
	g.GET("/upcoming", showtimes.Upcoming)
	g.GET("/:id", showtimes.Get)
	g.GET("/:id/available_seats", showtimes.AvailableSeats)
	g.POST("", showtimes.Create, admin)
	g.PUT("/:id", showtimes.Update, admin)
	g.PUT("/:id/update_seats", showtimes.UpdateSeats, admin)
	g.DELETE("/:id", showtimes.Delete, admin)

	// --- Customers: own profile for everyone, the rest for admins ---
	customers := handler.NewCustomerHandler(deps.Customers)
	g = e.Group("/customers", authn)
	g.POST("", customers.Create)
	g.GET("/me", customers.Me)
	g.GET("/:id", customers.Get)
	g.PUT("/:id", customers.Update)
	g.GET("", customers.List, admin)
	g.GET("/search", customers.Search, admin)
	g.DELETE("/:id", customers.Delete, admin)

	// --- Tickets ---
	tickets := handler.NewTicketHandler(deps.Tickets)
	g = e.Group("/tickets", authn)
	g.POST("", tickets.Create)
	g.GET("/my-tickets", tickets.Mine)
	g.GET("/:id", tickets.Get)
	g.PUT("/:id/mark-used", tickets.MarkUsed, staff)
	g.GET("", tickets.List, admin)
	g.GET("/search", tickets.Search, admin)
	g.PUT("/:id", tickets.Update, admin)
	g.DELETE("/:id", tickets.Delete, admin)

	return e
}

func infraPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
