package router

import (
	"github.com/gin-gonic/gin"
	"github.com/navid-fn/sourcing-radar/server/internal/handler"
)

func registerSourcingRoutes(router *gin.RouterGroup, h *handler.SourcingHandler) {
	router.GET("/decisions/latest", h.GetLatestDecisions)
	router.GET("/keywords", h.GetKeywords)
	router.GET("/seasonal", h.GetSeasonal)
	router.GET("/login-status", h.GetLoginStatus)
}
