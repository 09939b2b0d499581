package app

import (
	"time"

	"github.com/quantfeed/blockwatch/pkg/cache"
	"github.com/quantfeed/blockwatch/pkg/types"
)

// HintTracker remembers the last reference price seen per asset, backed by a
// TTL cache. It is the third tier of the reference-price fallback: a message
// with no leg ref and no spot-price block still gets a price if one came
// through recently.
type HintTracker struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewHintTracker creates a new hint tracker.
func NewHintTracker(c cache.Cache, ttl time.Duration) *HintTracker {
	return &HintTracker{
		cache: c,
		ttl:   ttl,
	}
}

// Lookup returns the last known reference price for an asset.
func (h *HintTracker) Lookup(asset types.Asset) (float64, bool) {
	value, found := h.cache.Get(hintKey(asset))
	if !found {
		return 0, false
	}
	price, ok := value.(float64)
	if !ok {
		return 0, false
	}
	return price, true
}

// Update records a freshly observed reference price for an asset.
func (h *HintTracker) Update(asset types.Asset, price float64) {
	if asset == types.AssetUnknown || price <= 0 {
		return
	}
	h.cache.Set(hintKey(asset), price, h.ttl)
}

func hintKey(asset types.Asset) string {
	return "refprice:" + string(asset)
}
