package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/pkg/middleware"
)

// NewRouter assembles the HTTP surface.
func NewRouter(
	clients *ClientHandler,
	cards *CardHandler,
	charges *ChargeHandler,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hello": "world", "health": "/health"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	clientRoutes := router.Group("/clients")
	{
		clientRoutes.POST("", clients.CreateClient)
		clientRoutes.GET("/:id", clients.GetClient)
		clientRoutes.PUT("/:id", clients.UpdateClient)
		clientRoutes.DELETE("/:id", clients.DeleteClient)
	}

	cardRoutes := router.Group("/cards")
	{
		cardRoutes.POST("", cards.CreateCard)
		cardRoutes.GET("/:id", cards.GetCard)
		cardRoutes.PUT("/:id", cards.UpdateCard)
		cardRoutes.DELETE("/:id", cards.DeleteCard)
	}

	chargeRoutes := router.Group("/charges")
	{
		chargeRoutes.POST("", charges.CreateCharge)
		chargeRoutes.GET("/:clientId", charges.ListCharges)
		chargeRoutes.POST("/:id/refund", charges.RefundCharge)
	}

	return router
}
