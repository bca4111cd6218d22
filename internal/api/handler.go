package api

import (
	"net/http"

	"finderhub-backend/internal/cache"
	"finderhub-backend/internal/config"
	"finderhub-backend/internal/db"
	"finderhub-backend/internal/logger"
	"finderhub-backend/internal/storage"
	"finderhub-backend/internal/tabular"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	cacheKeyStudents = "list:students"
	cacheKeyBuses    = "list:buses"
)

type Handler struct {
	cfg      *config.Config
	students db.StudentStore
	buses    db.BusStore
	stops    db.StopStore
	users    db.UserStore
	blob     *storage.Stage
	cache    *cache.Cache
	parser   *tabular.Parser
	log      zerolog.Logger
}

func NewHandler(
	cfg *config.Config,
	students db.StudentStore,
	buses db.BusStore,
	stops db.StopStore,
	users db.UserStore,
	blob *storage.Stage,
	listCache *cache.Cache,
) *Handler {
	return &Handler{
		cfg:      cfg,
		students: students,
		buses:    buses,
		stops:    stops,
		users:    users,
		blob:     blob,
		cache:    listCache,
		parser:   tabular.NewParser(),
		log:      logger.Get(),
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "FinderHub server is up and running!")
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}
