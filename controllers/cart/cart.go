package cartControllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartItemInput struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type BulkCartInput struct {
	Items []CartItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateCartInput needs at least one of the two fields; the service rejects an
// empty body.
type UpdateCartInput struct {
	VariantID *uint `json:"variant_id"`
	Quantity  *int  `json:"quantity" binding:"omitempty,min=1"`
}

type DeleteCartInput struct {
	CartIDs []uint `json:"cart_ids"`
}

// GET /user/cart
func GetUserCart(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		view, err := svc.GetCart(c.Request.Context(), userID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// GET /user/cart/count
func CountCart(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		n, err := svc.CountCart(c.Request.Context(), userID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

// POST /user/cart
func AddCartItem(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			invalidInput(c, err)
			return
		}

		res, err := svc.AddCart(c.Request.Context(), userID, input.VariantID, input.Quantity)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// POST /user/cart/bulk
func AddCartItemsBulk(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var input BulkCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			invalidInput(c, err)
			return
		}

		items := make([]cart.AddItem, 0, len(input.Items))
		for _, it := range input.Items {
			items = append(items, cart.AddItem{VariantID: it.VariantID, Quantity: it.Quantity})
		}

		res, err := svc.AddCartBulk(c.Request.Context(), userID, items)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// PATCH /user/cart/:cart_id
func UpdateCartItem(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		cartID, err := strconv.ParseUint(c.Param("cart_id"), 10, 64)
		if err != nil || cartID == 0 {
			invalidInput(c, errors.New("invalid cart id"))
			return
		}

		var input UpdateCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			invalidInput(c, err)
			return
		}

		res, err := svc.UpdateCart(c.Request.Context(), userID, uint(cartID), cart.UpdateRequest{
			VariantID: input.VariantID,
			Quantity:  input.Quantity,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// DELETE /user/cart?ids=1,2,3 or with a {"cart_ids": [...]} body.
// With no ids the whole cart is cleared.
func DeleteCartItems(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		ids, err := parseIDList(c.Query("ids"))
		if err != nil {
			invalidInput(c, err)
			return
		}
		if len(ids) == 0 && c.Request.ContentLength != 0 {
			// A chunked request reports -1 and may still carry no body.
			var input DeleteCartInput
			if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
				invalidInput(c, err)
				return
			}
			ids = input.CartIDs
		}

		res, err := svc.DeleteCart(c.Request.Context(), userID, ids)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func parseIDList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid cart id: " + part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid input: " + err.Error(),
		"code":  cart.KindInvalidInput.String(),
	})
}

func statusFor(kind cart.Kind) int {
	switch kind {
	case cart.KindInvalidInput:
		return http.StatusBadRequest
	case cart.KindVariantNotFound, cart.KindCartItemNotFound:
		return http.StatusNotFound
	case cart.KindVariantNotAvailable, cart.KindInsufficientStock:
		return http.StatusConflict
	case cart.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes domain failures with their code. Anything else is an
// infrastructure error: it is logged and hidden behind a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var ce *cart.Error
	if errors.As(err, &ce) {
		c.JSON(statusFor(ce.Kind), gin.H{"error": ce.Message, "code": ce.Kind.String()})
		return
	}
	_ = c.Error(err)
	log.Error("cart request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
