package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/montroyal/quote-service/internal/catalog"
	"github.com/montroyal/quote-service/internal/parsers/csv"
	"github.com/montroyal/quote-service/internal/parsers/xlsx"
	"github.com/montroyal/quote-service/internal/types"
)

// LoadCatalogResponse represents the outcome of a catalog upload
type LoadCatalogResponse struct {
	FileType  types.FileType       `json:"fileType"`
	Loaded    int                  `json:"loaded"`
	TotalRows int                  `json:"totalRows"`
	Warnings  []types.ParseWarning `json:"warnings,omitempty"`
}

// LoadCatalogErrorResponse is returned when the whole file is rejected
type LoadCatalogErrorResponse struct {
	Errors []types.ParseError `json:"errors"`
}

// LoadCatalog parses an uploaded catalog file and replaces the session's
// catalog with its articles. A rejected file leaves the previous catalog
// untouched.
// POST /internal/catalog (multipart field "file")
func LoadCatalog(c *gin.Context) {
	s := currentSession(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	fileType, err := detectFileType(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	var result *types.ParseResult
	switch fileType {
	case types.FileTypeXLSX:
		result, err = xlsx.NewParser(xlsx.ParserOptions{}).Parse(content)
	case types.FileTypeCSV:
		result, err = csv.NewParser().Parse(content)
	}
	if err != nil {
		metrics.RecordCatalogLoad(string(fileType), 0, 0, false)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if result.Failed() {
		metrics.RecordCatalogLoad(string(fileType), 0, len(result.Warnings), false)
		logger.Warn().
			Str("file", fileHeader.Filename).
			Int("errors", len(result.Errors)).
			Msg("Catalog file rejected")
		c.JSON(http.StatusUnprocessableEntity, LoadCatalogErrorResponse{Errors: result.Errors})
		return
	}

	s.Lock()
	s.Catalog.Load(result.Articles)
	s.Unlock()
	metrics.RecordCatalogLoad(string(fileType), len(result.Articles), len(result.Warnings), true)

	logger.Info().
		Str("file", fileHeader.Filename).
		Str("type", string(fileType)).
		Int("articles", len(result.Articles)).
		Int("warnings", len(result.Warnings)).
		Msg("Catalog loaded")

	c.JSON(http.StatusOK, LoadCatalogResponse{
		FileType:  fileType,
		Loaded:    len(result.Articles),
		TotalRows: result.TotalRows,
		Warnings:  result.Warnings,
	})
}

func detectFileType(filename string) (types.FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return types.FileTypeXLSX, nil
	case ".csv", ".txt":
		return types.FileTypeCSV, nil
	}
	return "", fmt.Errorf("unsupported file type %q: expected .xlsx, .xlsm, .csv or .txt", ext)
}

// SearchArticlesRequest represents query parameters for filtering articles
type SearchArticlesRequest struct {
	Label       string `form:"label"`
	Version     string `form:"version"`
	BusinessKey string `form:"businessKey"`
}

// SearchArticlesResponse represents the filtered article list
type SearchArticlesResponse struct {
	Articles []types.Article `json:"articles"`
	Total    int             `json:"total"`
}

// SearchArticles returns catalog articles matching the filter criteria.
// All filters are accent- and case-insensitive substring matches, combined
// with AND. No filters returns the full catalog in load order.
// GET /internal/catalog/articles?label=&version=&businessKey=
func SearchArticles(c *gin.Context) {
	s := currentSession(c)

	var req SearchArticlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()

	articles := s.Catalog.Filter(catalog.Criteria{
		Label:       req.Label,
		Version:     req.Version,
		BusinessKey: req.BusinessKey,
	})

	c.JSON(http.StatusOK, SearchArticlesResponse{
		Articles: articles,
		Total:    len(articles),
	})
}

// CatalogStatsResponse represents catalog summary statistics
type CatalogStatsResponse struct {
	Total      int                     `json:"total"`
	Categories []catalog.CategoryCount `json:"categories"`
}

// CatalogStats returns article counts per category in first-seen order.
// GET /internal/catalog/stats
func CatalogStats(c *gin.Context) {
	s := currentSession(c)
	s.Lock()
	defer s.Unlock()

	c.JSON(http.StatusOK, CatalogStatsResponse{
		Total:      s.Catalog.Len(),
		Categories: s.Catalog.CategoryCounts(),
	})
}
