package cache

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRistrettoCache(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	cacheInterface, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cacheInterface.Close()

	// Cast to RistrettoCache for test-specific methods
	cache := cacheInterface.(*RistrettoCache)

	t.Run("set-and-get", func(t *testing.T) {
		key := "refprice:BTC"
		value := 86884.71

		success := cache.Set(key, value, 1*time.Hour)
		if !success {
			t.Error("expected Set to succeed")
		}

		// Wait for Ristretto to process pending writes
		cache.Wait()

		retrieved, found := cache.Get(key)
		if !found {
			t.Error("expected key to be found")
		}

		if retrieved != value {
			t.Errorf("expected %v, got %v", value, retrieved)
		}
	})

	t.Run("get-missing-key", func(t *testing.T) {
		_, found := cache.Get("refprice:SOL")
		if found {
			t.Error("expected key to not be found")
		}
	})

	t.Run("delete", func(t *testing.T) {
		key := "dedup:12345"

		cache.Set(key, struct{}{}, 1*time.Hour)
		cache.Wait()

		_, found := cache.Get(key)
		if !found {
			t.Error("expected key to exist before delete")
		}

		cache.Delete(key)

		_, found = cache.Get(key)
		if found {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("ttl-expiration", func(t *testing.T) {
		key := "dedup:67890"

		cache.Set(key, struct{}{}, 200*time.Millisecond)
		cache.Wait()

		_, found := cache.Get(key)
		if !found {
			t.Error("expected key to exist before TTL expires")
		}

		time.Sleep(300 * time.Millisecond)

		_, found = cache.Get(key)
		if found {
			t.Error("expected key to be expired after TTL")
		}
	})

	t.Run("clear", func(t *testing.T) {
		cache.Set("refprice:BTC", 86884.71, 1*time.Hour)
		cache.Set("refprice:ETH", 3423.82, 1*time.Hour)
		cache.Wait()

		_, found1 := cache.Get("refprice:BTC")
		_, found2 := cache.Get("refprice:ETH")
		if !found1 || !found2 {
			t.Logf("Admission: btc=%v, eth=%v", found1, found2)
			t.Skip("Ristretto probabilistic admission - some keys not admitted")
		}

		cache.Clear()

		_, found1 = cache.Get("refprice:BTC")
		_, found2 = cache.Get("refprice:ETH")
		if found1 || found2 {
			t.Error("expected all keys to be cleared")
		}
	})
}
