package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/montroyal/quote-service/internal/cart"
	"github.com/montroyal/quote-service/internal/types"
)

// AddToCartRequest represents a batch of articles to add by business key
type AddToCartRequest struct {
	BusinessKeys []string `json:"businessKeys" binding:"required,min=1"`
}

// AddToCartResponse reports how many articles were added or skipped
type AddToCartResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// AddToCart adds catalog articles to the session cart by business key.
// Keys already present in the cart are skipped; the first occupant wins.
// POST /internal/cart/items
func AddToCart(c *gin.Context) {
	s := currentSession(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()

	articles := make([]types.Article, 0, len(req.BusinessKeys))
	for _, key := range req.BusinessKeys {
		a, ok := s.Catalog.Lookup(key)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown article: " + key})
			return
		}
		articles = append(articles, a)
	}

	added, skipped := s.Cart.Add(articles)
	s.Cart.RecalculateAll(engine)

	logger.Info().
		Int("added", added).
		Int("skipped", skipped).
		Int("cartSize", s.Cart.Len()).
		Msg("Articles added to cart")

	c.JSON(http.StatusOK, AddToCartResponse{
		Added:   added,
		Skipped: skipped,
		Total:   s.Cart.Len(),
	})
}

// ListCartResponse represents the cart contents
type ListCartResponse struct {
	Items []types.CartItem `json:"items"`
	Total int              `json:"total"`
}

// ListCart returns the cart items in insertion order.
// GET /internal/cart
func ListCart(c *gin.Context) {
	s := currentSession(c)
	s.Lock()
	defer s.Unlock()

	c.JSON(http.StatusOK, ListCartResponse{
		Items: s.Cart.Items(),
		Total: s.Cart.Len(),
	})
}

// UpdateCartItem patches the override fields of one cart item and
// recalculates derived pricing for the whole cart. Unknown keys are a
// silent no-op, mirroring in-place edits of a line that no longer exists.
// PATCH /internal/cart/items/:businessKey
func UpdateCartItem(c *gin.Context) {
	s := currentSession(c)

	var override cart.Override
	if err := c.ShouldBindJSON(&override); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()

	key := c.Param("businessKey")
	if _, ok := s.Cart.Get(key); !ok {
		// Absent keys are a full no-op: no recalculation, no metric.
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}

	s.Cart.UpdateOverride(key, override)
	start := time.Now()
	s.Cart.RecalculateAll(engine)
	metrics.RecordRecalculation(s.Cart.Len(), time.Since(start))

	item, _ := s.Cart.Get(key)
	c.JSON(http.StatusOK, gin.H{"updated": true, "item": item})
}

// RemoveCartItem deletes one item from the cart; no-op when absent.
// DELETE /internal/cart/items/:businessKey
func RemoveCartItem(c *gin.Context) {
	s := currentSession(c)
	s.Lock()
	defer s.Unlock()

	s.Cart.Remove(c.Param("businessKey"))
	c.JSON(http.StatusOK, gin.H{"total": s.Cart.Len()})
}

// ClearCart empties the cart and all per-item edit state.
// DELETE /internal/cart
func ClearCart(c *gin.Context) {
	s := currentSession(c)
	s.Lock()
	defer s.Unlock()

	s.Cart.Clear()
	c.JSON(http.StatusOK, gin.H{"total": 0})
}

// RecalculateCart reruns the derivation engine over every cart item.
// Recalculating an unchanged cart returns identical results.
// POST /internal/cart/recalculate
func RecalculateCart(c *gin.Context) {
	s := currentSession(c)
	s.Lock()
	defer s.Unlock()

	start := time.Now()
	s.Cart.RecalculateAll(engine)
	metrics.RecordRecalculation(s.Cart.Len(), time.Since(start))

	c.JSON(http.StatusOK, ListCartResponse{
		Items: s.Cart.Items(),
		Total: s.Cart.Len(),
	})
}
