package catalog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Sirbiscuits1/Marketplace/internal/domain"
)

// Cache is the single source of truth for the most recently fetched wallet
// views and the active-listings collection. The lifecycle coordinator is the
// only writer of the listings collection; read paths never keep a second
// copy. Wallet views expire: ownership changes under our feet, listings are
// reconciled explicitly.
type Cache struct {
	mu sync.RWMutex

	wallets   map[string]walletEntry
	walletTTL time.Duration

	listings []domain.Listing

	hits   uint64
	misses uint64
}

type walletEntry struct {
	view      domain.WalletView
	fetchedAt time.Time
}

// Stats is a snapshot of cache effectiveness for the health surface.
type Stats struct {
	WalletEntries  int     `json:"wallet_entries"`
	ActiveListings int     `json:"active_listings"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

// NewCache creates a cache; walletTTL <= 0 means wallet views never expire.
func NewCache(walletTTL time.Duration) *Cache {
	return &Cache{
		wallets:   make(map[string]walletEntry),
		walletTTL: walletTTL,
	}
}

// WalletView returns the cached view for an address if fresh.
func (c *Cache) WalletView(address string) (domain.WalletView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.wallets[address]
	if !ok || (c.walletTTL > 0 && time.Since(entry.fetchedAt) > c.walletTTL) {
		c.misses++
		return domain.WalletView{}, false
	}
	c.hits++
	return entry.view, true
}

// SetWalletView stores a freshly fetched view.
func (c *Cache) SetWalletView(view domain.WalletView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wallets[view.Address] = walletEntry{view: view, fetchedAt: time.Now()}
}

// InvalidateWallet drops a cached view, forcing the next read to refetch.
func (c *Cache) InvalidateWallet(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.wallets, address)
	slog.Debug("Invalidated wallet cache", slog.String("address", address))
}

// OrdinalByOrigin finds an ordinal in an address's cached view. Origin is
// the sole identity key, so the first match is the only match.
func (c *Cache) OrdinalByOrigin(address, origin string) (domain.Ordinal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.wallets[address]
	if !ok {
		return domain.Ordinal{}, false
	}
	for _, o := range entry.view.Ordinals {
		if o.Origin == origin {
			return o, true
		}
	}
	return domain.Ordinal{}, false
}

// ReplaceListings swaps in a reconciled active-listings collection.
func (c *Cache) ReplaceListings(listings []domain.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = append(c.listings[:0:0], listings...)
}

// Listings returns a snapshot of the active collection.
func (c *Cache) Listings() []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Listing(nil), c.listings...)
}

// ListingByID finds an active listing by server-assigned id.
func (c *Cache) ListingByID(id string) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listings {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Listing{}, false
}

// ListingByOrigin finds the active listing covering an origin, if any.
// At most one exists at a time from this client's perspective.
func (c *Cache) ListingByOrigin(origin string) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listings {
		if l.Origin == origin {
			return l, true
		}
	}
	return domain.Listing{}, false
}

// AppendListing adds a confirmed listing to the active collection.
func (c *Cache) AppendListing(l domain.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = append(c.listings, l)
}

// RemoveListing removes a listing by id, reporting whether it was present.
func (c *Cache) RemoveListing(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.listings {
		if l.ID == id {
			c.listings = append(c.listings[:i], c.listings[i+1:]...)
			return true
		}
	}
	return false
}

// ClassifyCard computes the display variant for an ordinal relative to the
// viewer's ordinal address.
func (c *Cache) ClassifyCard(o domain.Ordinal, viewerOrdAddress string) domain.CardKind {
	var listed *domain.Listing
	if l, ok := c.ListingByOrigin(o.Origin); ok {
		listed = &l
	}
	return domain.ClassifyCard(o.OwnerAddress, viewerOrdAddress, listed)
}

// Stats reports cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		WalletEntries:  len(c.wallets),
		ActiveListings: len(c.listings),
		HitRatePercent: rate,
	}
}
