package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sirbiscuits1/Marketplace/internal/catalog"
	"github.com/Sirbiscuits1/Marketplace/internal/domain"
	"github.com/Sirbiscuits1/Marketplace/internal/gateway"
	"github.com/Sirbiscuits1/Marketplace/internal/infra"
	"github.com/Sirbiscuits1/Marketplace/internal/wallet"
	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// Registry is the remote listing/asset registry as the coordinator sees it.
// *gateway.Client satisfies it; tests substitute fakes.
type Registry interface {
	WalletOrdinals(ctx context.Context, address string) (*domain.WalletView, error)
	ActiveListings(ctx context.Context) ([]domain.Listing, error)
	CreateListing(ctx context.Context, req gateway.CreateListingRequest) (*domain.Listing, error)
	CancelListing(ctx context.Context, listingID, sellerOrdAddress string) error
	NotifySold(ctx context.Context, listingID, buyerAddress, txid string) error
}

// Coordinator drives the listing lifecycle: create, cancel and purchase,
// reconciling the local catalog against the registry. Mutations are
// optimistic-on-success-only — local state changes strictly after the
// server or agent confirms, so there is never rollback logic.
type Coordinator struct {
	cfg      *infra.Config
	registry Registry
	cache    *catalog.Cache
	session  *wallet.Session
	notifier Notifier
}

// NewCoordinator wires the coordinator. A nil notifier discards outcomes.
func NewCoordinator(cfg *infra.Config, registry Registry, cache *catalog.Cache, session *wallet.Session, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Coordinator{
		cfg:      cfg,
		registry: registry,
		cache:    cache,
		session:  session,
		notifier: notifier,
	}
}

// Session exposes the wallet session for read paths.
func (c *Coordinator) Session() *wallet.Session { return c.session }

// Cache exposes the catalog for read paths.
func (c *Coordinator) Cache() *catalog.Cache { return c.cache }

// SearchAddress loads an address's ordinals into the catalog, cache-first.
// Works without a wallet session; this is the search intent.
func (c *Coordinator) SearchAddress(ctx context.Context, address string) (domain.WalletView, error) {
	if view, ok := c.cache.WalletView(address); ok {
		return view, nil
	}
	return c.RefreshWallet(ctx, address)
}

// RefreshWallet force-fetches an address's ordinals into the catalog.
func (c *Coordinator) RefreshWallet(ctx context.Context, address string) (domain.WalletView, error) {
	view, err := c.registry.WalletOrdinals(ctx, address)
	if err != nil {
		return domain.WalletView{}, gatewayErr("refresh_wallet", err)
	}
	c.cache.SetWalletView(*view)
	slog.Info("Wallet view refreshed",
		slog.String("address", address),
		slog.Int("ordinals", view.TotalCount),
		slog.Uint64("fetch_ms", view.FetchTimeMS))
	return *view, nil
}

// ReconcileListings replaces the local active-listings collection with the
// registry's. The server copy is authoritative.
func (c *Coordinator) ReconcileListings(ctx context.Context) error {
	listings, err := c.registry.ActiveListings(ctx)
	if err != nil {
		return gatewayErr("reconcile_listings", err)
	}
	c.cache.ReplaceListings(listings)
	slog.Info("Listings reconciled", slog.Int("active", len(listings)))
	return nil
}

// ListRequest is a create-listing intent.
type ListRequest struct {
	Origin     string
	Price      fees.Sats
	TipPercent float64
}

// List validates a create intent locally, computes the fee split, and
// submits it. The returned listing is the server's canonical copy, appended
// to the active collection only on success.
func (c *Coordinator) List(ctx context.Context, req ListRequest) (domain.Listing, error) {
	const op = "list"

	if c.session.State() != wallet.StateConnected {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrNotConnected))
	}
	if req.Price <= 0 {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrBadPrice))
	}
	if !c.tipAllowed(req.TipPercent) {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrBadTipPercent))
	}

	addrs := c.session.Addresses()
	ord, ok := c.cache.OrdinalByOrigin(addrs.OrdAddress, req.Origin)
	if !ok {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrOriginUnknown))
	}
	if ord.OwnerAddress != addrs.OrdAddress {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrNotOwner))
	}

	split := fees.Compute(req.Price, req.TipPercent)
	if split.SellerReceives <= 0 {
		return domain.Listing{}, c.fail(op, validationErr(op, ErrPriceTooLow))
	}

	created, err := c.registry.CreateListing(ctx, gateway.CreateListingRequest{
		Origin: req.Origin,
		OrdinalUtxo: domain.UtxoRef{
			Txid:     ord.Txid,
			Vout:     ord.Vout,
			Satoshis: ord.Satoshis,
		},
		SellerWantsSatoshis:    split.SellerReceives,
		TipPercent:             req.TipPercent,
		SellerAddress:          addrs.BSVAddress,
		SellerOrdAddress:       addrs.OrdAddress,
		ListingPriceSatoshis:   split.ListingPrice,
		MarketplaceFeeSatoshis: split.MarketplaceFee,
		TipSatoshis:            split.Tip,
		MarketplaceFeeAddress:  c.cfg.Market.FeeAddress,
	})
	if err != nil {
		return domain.Listing{}, c.fail(op, gatewayErr(op, err))
	}

	c.cache.AppendListing(*created)
	c.notifier.Success(op, fmt.Sprintf("Listed %s for %s", req.Origin, split.ListingPrice))
	slog.Info("Listing created",
		slog.String("id", created.ID),
		slog.String("origin", created.Origin),
		slog.String("price", split.ListingPrice.String()))
	return *created, nil
}

// Cancel removes an active listing. The listing must be locally known and
// owned by the connected session; a repeat cancel of a removed id resolves
// to a local not-found with no network call.
func (c *Coordinator) Cancel(ctx context.Context, listingID string) error {
	const op = "cancel"

	if c.session.State() != wallet.StateConnected {
		return c.fail(op, validationErr(op, ErrNotConnected))
	}
	listing, ok := c.cache.ListingByID(listingID)
	if !ok {
		return c.fail(op, validationErr(op, ErrListingUnknown))
	}
	addrs := c.session.Addresses()
	if listing.SellerOrdAddress != addrs.OrdAddress {
		return c.fail(op, validationErr(op, ErrNotOwner))
	}

	if err := c.registry.CancelListing(ctx, listingID, addrs.OrdAddress); err != nil {
		return c.fail(op, gatewayErr(op, err))
	}

	c.cache.RemoveListing(listingID)
	c.notifier.Success(op, fmt.Sprintf("Cancelled listing %s", listingID))
	slog.Info("Listing cancelled", slog.String("id", listingID))
	return nil
}

// PurchaseResult is a purchase outcome. Unsupported means the agent lacks
// the purchase capability; that is a reported condition, not a failure.
type PurchaseResult struct {
	Txid        string
	Unsupported bool
}

// Purchase delegates fund movement to the agent's purchase capability.
// Self-purchase is rejected locally before any network or agent call. Once
// the agent reports a settlement txid the purchase is irreversible: the
// sold notification to the registry is best-effort and its failure is
// logged, never rolled back.
func (c *Coordinator) Purchase(ctx context.Context, listingID string) (PurchaseResult, error) {
	const op = "purchase"

	if c.session.State() != wallet.StateConnected {
		return PurchaseResult{}, c.fail(op, validationErr(op, ErrNotConnected))
	}
	listing, ok := c.cache.ListingByID(listingID)
	if !ok {
		return PurchaseResult{}, c.fail(op, validationErr(op, ErrListingUnknown))
	}
	addrs := c.session.Addresses()
	if listing.SellerOrdAddress == addrs.OrdAddress {
		return PurchaseResult{}, c.fail(op, validationErr(op, ErrSelfPurchase))
	}

	purchaser := c.session.Purchaser()
	if purchaser == nil {
		c.notifier.Failure(op, "Purchasing is not yet supported by this wallet")
		slog.Info("Purchase unsupported by agent", slog.String("listing", listingID))
		return PurchaseResult{Unsupported: true}, nil
	}

	txid, err := safePurchase(ctx, purchaser, wallet.PurchaseRequest{
		Outpoint:              listing.OrdinalUtxo.Txid + "_" + fmt.Sprint(listing.OrdinalUtxo.Vout),
		MarketplaceRate:       fees.PlatformFeePercent,
		MarketplaceFeeAddress: c.cfg.Market.FeeAddress,
	})
	if err != nil {
		return PurchaseResult{}, c.fail(op, agentErr(op, err))
	}

	// Funds have moved. Everything past this point is best-effort.
	if err := c.registry.NotifySold(ctx, listingID, addrs.BSVAddress, txid); err != nil {
		slog.Warn("Sold notification failed (purchase already settled)",
			slog.String("listing", listingID),
			slog.String("txid", txid),
			slog.Any("error", err))
	}

	c.cache.RemoveListing(listingID)
	c.session.RefreshBalance(ctx)
	c.notifier.Success(op, fmt.Sprintf("Purchased %s (tx %s)", listing.Origin, txid))
	slog.Info("Purchase settled",
		slog.String("listing", listingID),
		slog.String("txid", txid))
	return PurchaseResult{Txid: txid}, nil
}

func (c *Coordinator) tipAllowed(t float64) bool {
	for _, v := range c.cfg.Market.TipPercents {
		if v == t {
			return true
		}
	}
	return false
}

// fail reports a failure outcome and returns the error unchanged.
func (c *Coordinator) fail(op string, err *OpError) error {
	c.notifier.Failure(op, err.Err.Error())
	slog.Warn("Operation failed",
		slog.String("op", op),
		slog.String("kind", err.Kind.String()),
		slog.Any("error", err.Err))
	return err
}

// safePurchase wraps the agent's purchase call so a panic degrades to a
// reported agent failure.
func safePurchase(ctx context.Context, p wallet.Purchaser, req wallet.PurchaseRequest) (txid string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wallet agent panicked in PurchaseOrdinal: %v", r)
		}
	}()
	return p.PurchaseOrdinal(ctx, req)
}
