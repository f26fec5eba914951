package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Sirbiscuits1/Marketplace/internal/catalog"
	"github.com/Sirbiscuits1/Marketplace/internal/gateway"
	"github.com/Sirbiscuits1/Marketplace/internal/infra"
	"github.com/Sirbiscuits1/Marketplace/internal/market"
	"github.com/Sirbiscuits1/Marketplace/internal/notify"
	"github.com/Sirbiscuits1/Marketplace/internal/wallet"
)

// Bootstrap orchestrates coordinator startup: config, logging, journal,
// gateway client, wallet agent and session, catalog, coordinator.
type Bootstrap struct {
	Config      *infra.Config
	Registry    *gateway.Client
	Cache       *catalog.Cache
	Session     *wallet.Session
	Coordinator *market.Coordinator
	Queue       *notify.Queue
	Journal     *notify.Journal
}

// NewBootstrap creates an empty Bootstrap; call Initialize before use.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize builds the whole object graph. The wallet agent comes from the
// configured bridge URL; without one a permanently absent mock stands in,
// which the session manager reports as NotFound after its probe.
func (b *Bootstrap) Initialize(configPath string) error {
	var cfg *infra.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = infra.LoadConfig(configPath)
	} else {
		cfg = infra.DefaultConfig()
		err = cfg.Validate()
	}
	if err != nil {
		return err
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))

	if cfg.Journal.Enabled {
		journal, err := notify.OpenJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("Outcome journal opened", slog.String("path", cfg.Journal.Path))
	}
	b.Queue = notify.NewQueue(100, b.Journal)

	b.Registry = gateway.NewClient(cfg)
	b.Cache = catalog.NewCache(30 * time.Second) // ownership changes under us

	var agent wallet.Agent
	if cfg.Wallet.BridgeURL != "" {
		agent = wallet.NewBridgeAgent(cfg.Wallet.BridgeURL)
		slog.Info("Wallet bridge configured", slog.String("url", cfg.Wallet.BridgeURL))
	} else {
		agent = &wallet.MockAgent{}
		slog.Warn("No wallet bridge configured; wallet will report not found")
	}

	b.Session = wallet.NewSession(agent, wallet.SessionOptions{
		DetectInterval:     cfg.DetectInterval(),
		PassiveTimeout:     cfg.PassiveDetectTimeout(),
		InteractiveTimeout: cfg.InteractiveDetectTimeout(),
		OnConnected: func(ctx context.Context, ordAddress string) {
			// Fresh session: the owned view must reflect this wallet.
			b.Cache.InvalidateWallet(ordAddress)
			if _, err := b.Coordinator.RefreshWallet(ctx, ordAddress); err != nil {
				slog.Warn("Post-connect wallet refresh failed", slog.Any("error", err))
			}
		},
	})

	b.Coordinator = market.NewCoordinator(cfg, b.Registry, b.Cache, b.Session, b.Queue)

	slog.Info("Coordinator initialized",
		slog.String("gateway", cfg.Gateway.BaseURL),
		slog.String("fee_address", cfg.Market.FeeAddress))
	return nil
}

// Close releases held resources.
func (b *Bootstrap) Close() {
	if b.Journal != nil {
		b.Journal.Close()
	}
}
