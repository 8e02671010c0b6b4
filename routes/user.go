package routes

import (
	cartControllers "github.com/ShowRoomzs/back-end-sub001/controllers/cart"
	"github.com/ShowRoomzs/back-end-sub001/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.JWTSecret))
	{
		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(d.Cart, d.Logger))               // GET /user/cart
			cartGroup.GET("/count", cartControllers.CountCart(d.Cart, d.Logger))           // GET /user/cart/count
			cartGroup.POST("", cartControllers.AddCartItem(d.Cart, d.Logger))              // POST /user/cart
			cartGroup.POST("/bulk", cartControllers.AddCartItemsBulk(d.Cart, d.Logger))    // POST /user/cart/bulk
			cartGroup.PATCH("/:cart_id", cartControllers.UpdateCartItem(d.Cart, d.Logger)) // PATCH /user/cart/:cart_id
			cartGroup.DELETE("", cartControllers.DeleteCartItems(d.Cart, d.Logger))        // DELETE /user/cart
		}
	}
}
