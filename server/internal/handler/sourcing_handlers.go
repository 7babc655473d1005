package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/sourcing-radar/server/internal/service"
	"github.com/sirupsen/logrus"
)

type SourcingHandler struct {
	sourcingService *service.SourcingService
	logger          *logrus.Logger
}

func NewSourcingHandler(service *service.SourcingService, logger *logrus.Logger) *SourcingHandler {
	return &SourcingHandler{
		sourcingService: service,
		logger:          logger,
	}
}

func (h *SourcingHandler) GetLatestDecisions(c *gin.Context) {
	limit := service.DefaultDecisionLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	decisions, err := h.sourcingService.LatestDecisions(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "latest decisions", err)
		return
	}
	c.JSON(http.StatusOK, decisions)
}

func (h *SourcingHandler) GetKeywords(c *gin.Context) {
	keywords := service.SplitKeywords(c.Query("keywords"))
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywords query parameter is required"})
		return
	}

	products, err := h.sourcingService.Keywords(c.Request.Context(), keywords)
	if err != nil {
		h.internalError(c, "keywords", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *SourcingHandler) GetSeasonal(c *gin.Context) {
	patterns, err := h.sourcingService.Seasonal(c.Request.Context())
	if err != nil {
		h.internalError(c, "seasonal patterns", err)
		return
	}
	c.JSON(http.StatusOK, patterns)
}

func (h *SourcingHandler) GetLoginStatus(c *gin.Context) {
	status, err := h.sourcingService.LoginStatus()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "login status not checked yet"})
			return
		}
		h.internalError(c, "login status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SourcingHandler) internalError(c *gin.Context, what string, err error) {
	h.logger.Errorf("Failed to load %s: %v", what, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + what})
}
