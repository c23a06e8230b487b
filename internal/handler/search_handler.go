package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nathanoyet/contra-ai/pkg/alphavantage"
)

const maxSearchResults = 10

type SymbolSearcher interface {
	SymbolSearch(ctx context.Context, keywords string) ([]alphavantage.SearchMatch, error)
}

type SearchHandler struct {
	searcher SymbolSearcher
}

func NewSearchHandler(searcher SymbolSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) GetSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter q"})
		return
	}

	matches, err := h.searcher.SymbolSearch(c.Request.Context(), q)
	if err != nil {
		upstreamError(c, "Failed to search symbols", err)
		return
	}
	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Symbol:     m.Symbol,
			Name:       m.Name,
			Type:       m.Type,
			Region:     m.Region,
			Currency:   m.Currency,
			MatchScore: m.MatchScore,
		})
	}

	c.JSON(http.StatusOK, gin.H{"query": q, "results": results})
}
