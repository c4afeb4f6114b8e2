package routes

import (
	"github.com/bmt-labs/checkout-bridge/config"
	"github.com/bmt-labs/checkout-bridge/controllers"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			checkout := v1.Group("/checkout")
			{
				// Order creation is merchant-backend only.
				checkout.POST("/init", utils.AppKeyMiddleware(cfg.AppKey), controllers.InitCheckout)
				checkout.POST("/confirm", controllers.ConfirmCheckout)
				checkout.POST("/capture", controllers.CaptureCheckout)
			}

			ordersGroup := v1.Group("/orders")
			{
				ordersGroup.GET("/:orderId", controllers.GetOrder)
				ordersGroup.POST("/:orderId/pixel-init", controllers.BindPaymentIdentifiers)
			}
		}

		// Raw gateway passthrough for the widget.
		api.Any("/pixelpay/*path", controllers.ProxyGateway)
	}

	return router
}
