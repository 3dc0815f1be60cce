package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	"github.com/smallbiznis/skyfare/internal/observability/logger"
)

func (s *Server) CalculateFare(c *gin.Context) {
	var req farecalcdomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareCalcSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(logger.ContextKeyFareClassCode, resp.FareClassCode)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ValidateBooking(c *gin.Context) {
	var req farecalcdomain.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareCalcSvc.ValidateBooking(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CalculateChangeFee(c *gin.Context) {
	var req farecalcdomain.ChangeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareCalcSvc.ChangeFee(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
