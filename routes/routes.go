// Package routes assembles the HTTP surface: middleware stack, route
// table and the controllers behind a dependency-injected deps struct.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"churrasapp/db"
	"churrasapp/middlewares"
	"churrasapp/models"
	"churrasapp/utils"
)

// Config carries the route-level settings main resolves from the
// environment.
type Config struct {
	AllowedOrigin string
	CacheTTL      time.Duration
}

type deps struct {
	events models.EventRepository
	guests models.GuestRepository
	items  models.ItemRepository
	dbm    *db.Manager
	inv    *utils.CacheInvalidator
	log    zerolog.Logger
	start  time.Time
}

// RegisterRoutes wires middleware and routes onto the engine. All
// repositories come from main; routes never touch a database directly.
func RegisterRoutes(
	server *gin.Engine,
	cfg Config,
	ev models.EventRepository,
	gu models.GuestRepository,
	it models.ItemRepository,
	dbm *db.Manager,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
	log zerolog.Logger,
) {
	d := &deps{events: ev, guests: gu, items: it, dbm: dbm, inv: inv, log: log, start: time.Now()}

	// Uncaught panics become the generic 500 envelope; detail stays in
	// the server log.
	server.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("panic recovered")
		respondError(c, http.StatusInternalServerError, "Erro interno do servidor", gin.H{"path": c.Request.URL.Path})
		c.Abort()
	}))

	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	server.Use(middlewares.CORS(cfg.AllowedOrigin))

	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	if rdb != nil {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		server.Use(middlewares.ResponseCache(rdb, ttl))
	}

	// Health
	server.GET("/health", d.health)
	server.GET("/health/detailed", d.healthDetailed)

	api := server.Group("/api")
	{
		api.POST("/events", d.createEvent)
		api.GET("/events", d.listEvents)
		api.GET("/events/:id", d.getEvent)
		api.PUT("/events/:id", d.updateEvent)
		api.DELETE("/events/:id", d.deleteEvent)

		api.POST("/events/:id/guests", d.addGuest)
		api.GET("/events/:id/guests", d.listGuests)
		api.PUT("/guests/:id", d.updateGuest)
		api.PUT("/guests/:id/rsvp", d.updateRSVP)
		api.PUT("/guests/:id/payment", d.markGuestPaid)
		api.DELETE("/guests/:id", d.deleteGuest)

		api.POST("/events/:id/items", d.addItem)
		api.GET("/events/:id/items", d.listItems)
		api.PUT("/items/:id", d.updateItem)
		api.POST("/items/:id/purchase", d.purchaseItem)
		api.POST("/items/:id/assign", d.assignItem)
		api.POST("/items/:id/snapshot", d.snapshotItem)
		api.DELETE("/items/:id", d.deleteItem)

		api.GET("/templates", d.listTemplates)
		api.POST("/templates/:id/materialize", d.materializeTemplate)
	}

	server.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Rota não encontrada", gin.H{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// purgeEventCaches drops the cached event list/detail after any
// mutation that changes what those reads would return.
func (d *deps) purgeEventCaches(c *gin.Context, eventID string) {
	if d.inv == nil {
		return
	}
	d.inv.PurgeEventsList(c)
	if eventID != "" {
		d.inv.PurgeEventItem(c, eventID)
	}
}
