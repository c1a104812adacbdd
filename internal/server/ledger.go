package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type burnRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) getSupply(c *gin.Context) {
	aggregate, err := s.ledgerSvc.GetAggregate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": aggregate})
}

func (s *Server) burnCurrency(c *gin.Context) {
	var req burnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	distribution, err := s.ledgerSvc.Burn(c.Request.Context(), userID, req.Amount, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": distribution})
}

func (s *Server) listOwnerDistributions(c *gin.Context) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(c.Param("owner_id")))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	distributions, err := s.ledgerSvc.ListDistributions(c.Request.Context(), ownerID, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": distributions})
}
