package router

import (
	"github.com/gin-gonic/gin"
	"github.com/navid-fn/sourcing-radar/server/internal/handler"
)

type Config struct {
	SourcingHandler *handler.SourcingHandler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	registerSourcingRoutes(api, cfg.SourcingHandler)

	return router
}
