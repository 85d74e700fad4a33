package restock

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/domain"
)

// Engine turns the current stock ledger plus open material-order coverage
// into reorder suggestions. It never mutates anything; repeated calls with
// unchanged inputs are served from cache.
type Engine struct {
	cache         cache.RestockCache
	cacheTTL      time.Duration
	minConfidence float64
	reorderPoint  int64
}

func NewEngine(cacheStore cache.RestockCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 20 * time.Second
	}

	return &Engine{
		cache:         cacheStore,
		cacheTTL:      cacheTTL,
		minConfidence: 0.35,
		reorderPoint:  50,
	}
}

func (e *Engine) Suggest(
	ctx context.Context,
	req domain.RestockRequest,
	materials []domain.RawMaterial,
	pendingQty map[string]int64,
) domain.RestockResponse {
	startedAt := time.Now()

	limit := req.Limit
	if limit < 1 || limit > 50 {
		limit = 5
	}

	cacheKey := buildCacheKey(req.OutletID, limit, materials, pendingQty)
	if cached, ok, err := e.cache.GetRestock(ctx, cacheKey); err == nil && ok {
		cached.LatencyMS = time.Since(startedAt).Milliseconds()
		return *cached
	}

	suggestions := make([]domain.RestockSuggestion, 0, limit)
	for _, material := range materials {
		if !material.Active {
			continue
		}

		pending := pendingQty[material.ID]
		depletion := clamp(1-float64(material.Stock)/float64(e.reorderPoint), 0, 1)
		coverageGap := clamp(1-float64(material.Stock+pending)/float64(e.reorderPoint), 0, 1)
		costScore := 1 - clamp(float64(material.PurchasePrice)/150000.0, 0, 1)

		score := 0.50*depletion + 0.35*coverageGap + 0.15*costScore
		confidence := clamp(score, 0, 1)
		if confidence < e.minConfidence {
			continue
		}

		suggestedQty := 2*e.reorderPoint - material.Stock - pending
		if suggestedQty < 1 {
			continue
		}

		suggestions = append(suggestions, domain.RestockSuggestion{
			MaterialID:    material.ID,
			Name:          material.Name,
			Unit:          material.Unit,
			CurrentStock:  material.Stock,
			PendingQty:    pending,
			SuggestedQty:  suggestedQty,
			EstimatedCost: suggestedQty * material.PurchasePrice,
			ReasonCode:    deriveReason(depletion, coverageGap, costScore),
			Confidence:    round2(confidence),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence == suggestions[j].Confidence {
			return suggestions[i].Name < suggestions[j].Name
		}
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	resp := domain.RestockResponse{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Suggestions: suggestions,
		LatencyMS:   time.Since(startedAt).Milliseconds(),
	}
	_ = e.cache.SetRestock(ctx, cacheKey, &resp, e.cacheTTL)
	return resp
}

func deriveReason(depletion float64, coverageGap float64, costScore float64) string {
	type reasonWeight struct {
		code  string
		value float64
	}

	reasons := []reasonWeight{
		{code: "stock_depleted", value: depletion},
		{code: "open_orders_insufficient", value: coverageGap},
		{code: "cheap_topup", value: costScore},
	}

	sort.Slice(reasons, func(i, j int) bool {
		return reasons[i].value > reasons[j].value
	})
	return reasons[0].code
}

func buildCacheKey(outletID string, limit int, materials []domain.RawMaterial, pendingQty map[string]int64) string {
	parts := make([]string, 0, len(materials)+2)
	parts = append(parts, outletID)
	parts = append(parts, fmt.Sprintf("l:%d", limit))
	for _, m := range materials {
		parts = append(parts, fmt.Sprintf("%s:%d:%d", m.ID, m.Stock, pendingQty[m.ID]))
	}
	sort.Strings(parts)

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return "pos:restock:" + hex.EncodeToString(hash[:])
}

func clamp(val float64, minVal float64, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
