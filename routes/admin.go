package routes

import (
	adminController "github.com/ShowRoomzs/back-end-sub001/controllers/admin"
	"github.com/ShowRoomzs/back-end-sub001/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.AdminAPIKey))
	{
		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", adminController.GetUserCart(d.Cart, d.Logger))
			cartMgmt.GET("/:user_id/export", adminController.ExportUserCartToExcel(d.Cart, d.Logger))
		}
	}
}
