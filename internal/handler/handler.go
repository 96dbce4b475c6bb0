package handler

import (
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/apperr"
	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail maps a service error to its HTTP status and writes the standard error envelope
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}
