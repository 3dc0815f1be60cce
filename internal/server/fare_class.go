package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/observability/logger"
)

func (s *Server) CreateFareClass(c *gin.Context) {
	var req fareclassdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareClassSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(logger.ContextKeyFareClassCode, resp.Code)
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListFareClasses(c *gin.Context) {
	var query struct {
		AirlineID  string `form:"airline_id"`
		CabinClass string `form:"cabin_class"`
		Active     string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "must be true or false"))
		return
	}

	resp, err := s.fareClassSvc.List(c.Request.Context(), fareclassdomain.ListRequest{
		AirlineID:  strings.TrimSpace(query.AirlineID),
		CabinClass: strings.TrimSpace(query.CabinClass),
		Active:     active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFareClassByID(c *gin.Context) {
	resp, err := s.fareClassSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateFareClass(c *gin.Context) {
	var req fareclassdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.fareClassSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
