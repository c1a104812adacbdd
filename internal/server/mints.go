package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	mintdomain "github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
)

type createMintRequest struct {
	CatalogItemID string `json:"catalog_item_id"`
	OwnerID       string `json:"owner_id"`
}

type reconcileTokenRequest struct {
	TokenIdentifier string `json:"token_identifier"`
}

func (s *Server) createMint(c *gin.Context) {
	var req createMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	catalogItemID, err := snowflake.ParseString(strings.TrimSpace(req.CatalogItemID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.mintSvc.Mint(c.Request.Context(), mintdomain.MintRequest{
		CatalogItemID: catalogItemID,
		OwnerID:       ownerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) getMint(c *gin.Context) {
	record, err := s.mintSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) reconcileMintToken(c *gin.Context) {
	recordID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, mintdomain.ErrNotFound)
		return
	}

	var req reconcileTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.TokenIdentifier) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	record, err := s.mintSvc.ReconcileToken(c.Request.Context(), recordID, req.TokenIdentifier)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) listOwnerMints(c *gin.Context) {
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

	records, err := s.mintSvc.ListByOwner(c.Request.Context(), ownerID, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
