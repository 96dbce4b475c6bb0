package handler

import (
	"net/http"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/middleware"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/service"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/pagination"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", middleware.RequireRole(model.RoleAdmin), h.ListAuditLogs)
}

// ListAuditLogs returns audit records, newest first
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.ListResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}
