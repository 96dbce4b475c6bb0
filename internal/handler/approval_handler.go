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

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/api/approval-jobs")
	{
		// Employees submit; admins may submit on an employee's behalf
		jobs.POST("", middleware.RequireRole(model.RoleEmployee, model.RoleAdmin), h.Submit)
		jobs.GET("", middleware.RequireRole(model.RoleAdmin), h.ListPending)
		jobs.GET("/:id", middleware.RequireRole(model.RoleEmployee, model.RoleAdmin), h.GetByID)
		jobs.PUT("/:id/decision", middleware.RequireRole(model.RoleAdmin), h.Decide)
	}
}

// Submit creates a pending approval job for a governed mutation
// @Summary      Submit an approval job
// @Description  Captures a governed category/product mutation as a pending job awaiting an administrator's decision
// @Tags         approval-jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitApprovalRequest  true  "Submission"
// @Success      201      {object}  response.Response{data=service.ApprovalJobResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/approval-jobs [post]
func (h *ApprovalHandler) Submit(c *gin.Context) {
	requesterID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	var req service.SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.approvalService.Submit(c.Request.Context(), requesterID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, job))
}

// Decide approves or rejects a pending approval job
// @Summary      Decide an approval job
// @Description  Approves (executing the captured mutation) or rejects a pending job. Decision and side effect commit atomically.
// @Tags         approval-jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Job ID"
// @Param        payload  body      service.DecisionRequest  true  "Decision"
// @Success      200      {object}  response.Response{data=service.ApprovalJobResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/approval-jobs/{id}/decision [put]
func (h *ApprovalHandler) Decide(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid job id"))
		return
	}

	deciderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid user identity"))
		return
	}

	var decision service.DecisionRequest
	if err := c.ShouldBindJSON(&decision); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.approvalService.Decide(c.Request.Context(), jobID, deciderID, &decision)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// ListPending returns pending approval jobs oldest-first for admin triage
// @Summary      List pending approval jobs
// @Tags         approval-jobs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.ListResponse
// @Router       /api/approval-jobs [get]
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	params := pagination.Parse(c)

	jobs, total, err := h.approvalService.ListPending(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, jobs, total, params.Page, params.Limit))
}

// GetByID returns a single approval job for status polling
// @Summary      Get an approval job
// @Tags         approval-jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=service.ApprovalJobResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/approval-jobs/{id} [get]
func (h *ApprovalHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.BadRequest("invalid job id"))
		return
	}

	job, err := h.approvalService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}
