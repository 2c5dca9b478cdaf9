package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/montroyal/quote-service/internal/pricing"
	"github.com/montroyal/quote-service/internal/session"
	"github.com/montroyal/quote-service/internal/storage"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	Init(Deps{
		Sessions: session.NewManager(),
		Engine:   pricing.DefaultEngine(),
		Archive:  archive,
		Logger:   &log,
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", HealthCheck)
	router.POST("/internal/catalog", LoadCatalog)
	router.GET("/internal/catalog/articles", SearchArticles)
	router.GET("/internal/catalog/stats", CatalogStats)
	router.GET("/internal/cart", ListCart)
	router.POST("/internal/cart/items", AddToCart)
	router.PATCH("/internal/cart/items/:businessKey", UpdateCartItem)
	router.DELETE("/internal/cart/items/:businessKey", RemoveCartItem)
	router.DELETE("/internal/cart", ClearCart)
	router.POST("/internal/cart/recalculate", RecalculateCart)
	router.POST("/internal/quote/export", ExportQuote)
	router.GET("/internal/quote/download", DownloadQuote)
	router.GET("/internal/quote", ListQuotes)
	return router
}

func catalogWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Catégorie produit", "Libellé article", "Version", "Code EDI", "Prix Brut HT", "Prix Net HT", "Remise (%)", "Coeff", "RFA"},
		{"Montures", "Monture été titane", "V1", "EDI-1001", "100", "90", "10", "2", "5"},
		{"Verres", "Verre progressif 1.67", "V2", "EDI-2001", "200", "150", "0", "1.8", "0"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadCatalog(t *testing.T, router *gin.Engine, sessionID string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "catalogue.xlsx")
	require.NoError(t, err)
	_, err = part.Write(catalogWorkbook(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/internal/catalog", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Header().Get(SessionHeader)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, sessionID string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestLoadCatalogAndSearch(t *testing.T) {
	router := setupRouter(t)
	sessionID := uploadCatalog(t, router, "")
	require.NotEmpty(t, sessionID)

	// Accent-insensitive label filter: "ete" matches "été".
	w := doJSON(t, router, "GET", "/internal/catalog/articles?label=ete", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchArticlesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "EDI-1001", resp.Articles[0].BusinessKey)

	w = doJSON(t, router, "GET", "/internal/catalog/stats", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats CatalogStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, "Montures", stats.Categories[0].Category)
}

func TestLoadCatalogUnsupportedExtension(t *testing.T) {
	router := setupRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "catalogue.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a catalog"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/internal/catalog", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	router := setupRouter(t)
	sessionID := uploadCatalog(t, router, "")

	// Duplicate key in the same batch is skipped.
	w := doJSON(t, router, "POST", "/internal/cart/items", sessionID, AddToCartRequest{
		BusinessKeys: []string{"EDI-1001", "EDI-2001", "EDI-1001"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var addResp AddToCartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &addResp))
	assert.Equal(t, 2, addResp.Added)
	assert.Equal(t, 1, addResp.Skipped)
	assert.Equal(t, 2, addResp.Total)

	// Override one line and check the recalculated result.
	w = doJSON(t, router, "PATCH", "/internal/cart/items/EDI-1001", sessionID, map[string]interface{}{
		"discountPercent": "20",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var patchResp struct {
		Updated bool `json:"updated"`
		Item    struct {
			Derived struct {
				DiscountAmount string `json:"discountAmount"`
			} `json:"derived"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patchResp))
	assert.True(t, patchResp.Updated)
	assert.Equal(t, "20", patchResp.Item.Derived.DiscountAmount)

	// Unknown key is a silent no-op.
	w = doJSON(t, router, "PATCH", "/internal/cart/items/EDI-9999", sessionID, map[string]interface{}{
		"discountPercent": "20",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patchResp))
	assert.False(t, patchResp.Updated)

	w = doJSON(t, router, "DELETE", "/internal/cart/items/EDI-2001", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/internal/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp ListCartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)
}

func TestUpdateUnknownCartItemLeavesCartUntouched(t *testing.T) {
	router := setupRouter(t)
	sessionID := uploadCatalog(t, router, "")

	w := doJSON(t, router, "POST", "/internal/cart/items", sessionID, AddToCartRequest{
		BusinessKeys: []string{"EDI-1001"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", "/internal/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := w.Body.String()

	w = doJSON(t, router, "PATCH", "/internal/cart/items/EDI-9999", sessionID, map[string]interface{}{
		"discountPercent": "50",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var patchResp struct {
		Updated bool `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patchResp))
	assert.False(t, patchResp.Updated)

	// The cart must be byte-identical to before the unknown-key update.
	w = doJSON(t, router, "GET", "/internal/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, w.Body.String())
}

func TestExportAndDownloadQuote(t *testing.T) {
	router := setupRouter(t)
	sessionID := uploadCatalog(t, router, "")

	w := doJSON(t, router, "POST", "/internal/cart/items", sessionID, AddToCartRequest{
		BusinessKeys: []string{"EDI-1001", "EDI-2001"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/internal/quote/export", sessionID, ExportQuoteRequest{Client: "Optique Martin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var exportResp ExportQuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exportResp))
	assert.Regexp(t, `^PROP-\d{8}-\d{4}$`, exportResp.ProposalNumber)
	assert.Equal(t, 2, exportResp.ArticleCount)
	require.NotEmpty(t, exportResp.Key)

	w = doJSON(t, router, "GET", "/internal/quote/download?key="+exportResp.Key, sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = doJSON(t, router, "GET", "/internal/quote", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp ListQuotesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)
}

func TestExportEmptyCartConflict(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/internal/quote/export", "", ExportQuoteRequest{})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDownloadMissingQuote(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/internal/quote/download?key=proposals/none.xlsx", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentRequestsOnSameSession(t *testing.T) {
	router := setupRouter(t)
	sessionID := uploadCatalog(t, router, "")

	// Parallel add/remove/recalculate traffic on one session must serialize
	// on the session lock instead of racing on the cart's index map.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				doJSON(t, router, "POST", "/internal/cart/items", sessionID, AddToCartRequest{
					BusinessKeys: []string{"EDI-1001", "EDI-2001"},
				})
				doJSON(t, router, "DELETE", "/internal/cart/items/EDI-2001", sessionID, nil)
				doJSON(t, router, "POST", "/internal/cart/recalculate", sessionID, nil)
			}
		}()
	}
	wg.Wait()

	w := doJSON(t, router, "GET", "/internal/cart", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp ListCartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.LessOrEqual(t, listResp.Total, 2)
	assert.GreaterOrEqual(t, listResp.Total, 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	router := setupRouter(t)

	first := uploadCatalog(t, router, "")

	// A request without a session header gets a fresh, empty session.
	w := doJSON(t, router, "GET", "/internal/catalog/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := w.Header().Get(SessionHeader)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	var stats CatalogStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Total)
}
