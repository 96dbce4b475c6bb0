package handler

import (
	"net/http"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/middleware"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/service"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistHandler struct {
	wishlistService service.WishlistService
}

func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyUser := middleware.RequireRole(model.RoleAdmin, model.RoleEmployee, model.RoleCustomer)

	wishlist := router.Group("/api/wishlist", anyUser)
	{
		wishlist.GET("", h.List)
		wishlist.POST("/:productId", h.Add)
		wishlist.DELETE("/:productId", h.Remove)
		wishlist.POST("/:productId/move-to-cart", h.MoveToCart)
	}
}

// List returns the caller's wishlist
// @Summary      List wishlist
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	items, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// Add puts a product on the wishlist
// @Summary      Add to wishlist
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product ID"
// @Success      201        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Router       /api/wishlist/{productId} [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid product id"))
		return
	}

	if err := h.wishlistService.Add(c.Request.Context(), userID, productID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"product_id": productID}))
}

// Remove drops a product from the wishlist
// @Summary      Remove from wishlist
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/wishlist/{productId} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid product id"))
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), userID, productID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"product_id": productID}))
}

// MoveToCart moves a wishlist product into the cart atomically
// @Summary      Move wishlist item to cart
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/wishlist/{productId}/move-to-cart [post]
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid product id"))
		return
	}

	if err := h.wishlistService.MoveToCart(c.Request.Context(), userID, productID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"product_id": productID}))
}
