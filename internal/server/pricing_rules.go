package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
)

func (s *Server) ListPricingRules(c *gin.Context) {
	rules, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rules == nil {
		rules = []ruledomain.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rules": rules})
}

func (s *Server) UpsertPricingRule(c *gin.Context) {
	var req ruledomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "invalid request body")
		return
	}

	rule, err := s.ruleSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rule": rule})
}

func (s *Server) DeletePricingRule(c *gin.Context) {
	if err := s.ruleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) PricingMetrics(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortBadRequest(c, "invalid days parameter")
			return
		}
		days = parsed
	}

	to := s.clock.Now().UTC()
	from := to.AddDate(0, 0, -days)

	summary, err := s.auditSvc.Metrics(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": summary})
}

func (s *Server) PurgeDistanceCache(c *gin.Context) {
	if err := s.cacheSvc.Purge(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "distance cache purged"})
}
