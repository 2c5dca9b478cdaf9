package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/montroyal/quote-service/internal/export"
	"github.com/montroyal/quote-service/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportQuoteRequest represents the export parameters
type ExportQuoteRequest struct {
	Client string `json:"client"`
}

// ExportQuoteResponse describes the generated proposal document
type ExportQuoteResponse struct {
	ProposalNumber string         `json:"proposalNumber"`
	Key            string         `json:"key"`
	ArticleCount   int            `json:"articleCount"`
	Summary        export.Summary `json:"summary"`
}

// ExportQuote generates the proposal workbook for the current cart, archives
// it and returns its storage key. An empty cart is rejected.
// POST /internal/quote/export
func ExportQuote(c *gin.Context) {
	s := currentSession(c)

	var req ExportQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	if s.Cart.IsEmpty() {
		s.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "cart is empty"})
		return
	}

	s.Cart.RecalculateAll(engine)

	now := time.Now()
	proposal := export.BuildProposal(s.Cart.Items(), req.Client, now)
	s.Unlock()

	f, err := export.Workbook(proposal)
	if err != nil {
		metrics.RecordProposalExport(false)
		logger.Error().Err(err).Msg("Failed to build proposal workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		metrics.RecordProposalExport(false)
		logger.Error().Err(err).Msg("Failed to serialize proposal workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize workbook"})
		return
	}

	key := storage.BuildProposalKey(now, proposal.Number+".xlsx")
	meta := &storage.Metadata{
		ContentType:    xlsxContentType,
		ProposalNumber: proposal.Number,
		Client:         req.Client,
		GeneratedAt:    now,
	}
	if err := archive.Put(c.Request.Context(), key, buf.Bytes(), meta); err != nil {
		metrics.RecordProposalExport(false)
		logger.Error().Err(err).Str("key", key).Msg("Failed to archive proposal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive proposal"})
		return
	}

	metrics.RecordProposalExport(true)
	logger.Info().
		Str("proposal", proposal.Number).
		Str("key", key).
		Int("articles", proposal.Summary.ArticleCount).
		Msg("Proposal exported")

	c.JSON(http.StatusOK, ExportQuoteResponse{
		ProposalNumber: proposal.Number,
		Key:            key,
		ArticleCount:   proposal.Summary.ArticleCount,
		Summary:        proposal.Summary,
	})
}

// DownloadQuote streams an archived proposal document.
// GET /internal/quote/download?key=
func DownloadQuote(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	ctx := c.Request.Context()
	exists, err := archive.Exists(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check proposal"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
		return
	}

	content, err := archive.Get(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read proposal"})
		return
	}

	c.Data(http.StatusOK, xlsxContentType, content)
}

// ListQuotesResponse lists archived proposal keys
type ListQuotesResponse struct {
	Keys  []string `json:"keys"`
	Total int      `json:"total"`
}

// ListQuotes returns the keys of all archived proposals.
// GET /internal/quote
func ListQuotes(c *gin.Context) {
	keys, err := archive.List(c.Request.Context(), "proposals/")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list proposals"})
		return
	}
	c.JSON(http.StatusOK, ListQuotesResponse{Keys: keys, Total: len(keys)})
}
