package handler

import (
	"net/http"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/middleware"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/service"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/pagination"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) RegisterRoutes(router *gin.RouterGroup) {
	coupons := router.Group("/api/coupons", middleware.RequireRole(model.RoleAdmin))
	{
		coupons.GET("", h.List)
		coupons.POST("", h.Create)
		coupons.PUT("/:id/deactivate", h.Deactivate)
		coupons.DELETE("/:id", h.Delete)
	}
}

// List returns coupons with pagination
// @Summary      List coupons
// @Tags         coupons
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.ListResponse
// @Router       /api/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	coupons, total, err := h.couponService.List(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, coupons, total, params.Page, params.Limit))
}

// Create registers a new coupon code
// @Summary      Create coupon
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCouponRequest  true  "Coupon"
// @Success      201      {object}  response.Response{data=service.CouponResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req service.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, coupon))
}

// Deactivate disables a coupon without deleting it
// @Summary      Deactivate coupon
// @Tags         coupons
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Coupon ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/coupons/{id}/deactivate [put]
func (h *CouponHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid coupon id"))
		return
	}

	if err := h.couponService.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": id}))
}

// Delete removes a coupon
// @Summary      Delete coupon
// @Tags         coupons
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Coupon ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid coupon id"))
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
