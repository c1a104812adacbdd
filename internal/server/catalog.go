package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
)

func (s *Server) importCatalogItem(c *gin.Context) {
	var req catalogdomain.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.catalogSvc.Import(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) getCatalogItem(c *gin.Context) {
	item, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) listCatalogItems(c *gin.Context) {
	var query struct {
		Country string `form:"country"`
		Limit   int    `form:"limit"`
		Offset  int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Country: strings.TrimSpace(query.Country),
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
