package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/skyfare/internal/farerule/conditions"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	"github.com/smallbiznis/skyfare/pkg/db/pagination"
)

func (s *Server) CreateFareRule(c *gin.Context) {
	var req fareruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareRuleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListFareRules(c *gin.Context) {
	var query struct {
		FareClassID string `form:"fare_class_id"`
		AirlineID   string `form:"airline_id"`
		Category    string `form:"category"`
		Active      string `form:"active"`
		pagination.Pagination
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

	resp, err := s.fareRuleSvc.List(c.Request.Context(), fareruledomain.ListRequest{
		FareClassID: strings.TrimSpace(query.FareClassID),
		AirlineID:   strings.TrimSpace(query.AirlineID),
		Category:    strings.TrimSpace(query.Category),
		Active:      active,
		Pagination:  query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Rules, "page_info": resp.PageInfo})
}

func (s *Server) ListApplicableFareRules(c *gin.Context) {
	var query struct {
		FareClassID   string `form:"fare_class_id"`
		OriginID      string `form:"origin_id"`
		DestinationID string `form:"destination_id"`
		Date          string `form:"date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fareRuleSvc.Applicable(c.Request.Context(), fareruledomain.ApplicableRequest{
		FareClassID:   strings.TrimSpace(query.FareClassID),
		OriginID:      strings.TrimSpace(query.OriginID),
		DestinationID: strings.TrimSpace(query.DestinationID),
		Date:          strings.TrimSpace(query.Date),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFareRuleByID(c *gin.Context) {
	resp, err := s.fareRuleSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateFareRule(c *gin.Context) {
	var req fareruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.fareRuleSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFareRule(c *gin.Context) {
	resp, err := s.fareRuleSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListConditionSchemas(c *gin.Context) {
	schemas, err := conditions.Schemas()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": schemas})
}

func (s *Server) GetConditionSchema(c *gin.Context) {
	category, err := conditions.ParseCategory(c.Param("category"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	schema, err := conditions.Schema(category)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": schema})
}
