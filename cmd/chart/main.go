package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/tradeterm-lab/tradeterm/internal/config"
	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/state"
	"github.com/tradeterm-lab/tradeterm/internal/store"
	"github.com/tradeterm-lab/tradeterm/pkg/agent"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/provider"
)

func chartAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if v := cmd.String("cache"); v != "" {
		cfg.CacheDir = v
	}

	appLogger, err := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.Log.Level))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	manifest := cfg.Manifest
	if len(manifest) == 0 {
		manifest = store.DefaultManifest()
	}

	localStore := store.NewLocalStore(cfg.CacheDir, manifest, appLogger)
	if err := localStore.Init(); err != nil {
		return fmt.Errorf("failed to initialize local store: %w", err)
	}

	appStore := state.NewStore(nil, appLogger)

	fetcher, agentClient, err := buildFetcher(ctx, cfg, localStore, appStore, appLogger)
	if err != nil {
		return err
	}

	if agentClient != nil {
		defer func() {
			_ = agentClient.Close()
		}()
	}

	appStore.SetFetcher(fetcher)

	if catalog := localStore.CryptoAssets(); catalog.IsSome() {
		appStore.LoadCryptoAssets(catalog.Unwrap())
	}

	if catalog := localStore.StockUSAssets(); catalog.IsSome() {
		appStore.LoadStockAssets(catalog.Unwrap())
	}

	appStore.LoadCache(localStore.OhlcvDB())

	p := tea.NewProgram(NewModel(appStore), tea.WithAltScreen())

	appStore.OnChange(func(snap state.Snapshot) {
		p.Send(StateChangedMsg{Snapshot: snap})
	})
	appStore.OnFetchError(func(err error) {
		p.Send(FetchErrorMsg{Err: err})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}

	return nil
}

// buildFetcher wires the live feed selected by the configuration. The agent
// client, when one is dialed, is returned so the caller can close it.
func buildFetcher(ctx context.Context, cfg *config.Config, localStore *store.LocalStore, appStore *state.Store, appLogger *logger.Logger) (state.Fetcher, *agent.Client, error) {
	dialAgent := func() (*agent.Client, error) {
		agentCfg := agent.DefaultConfig(cfg.Feed.AgentURL)
		agentCfg.OnNotification = appStore.SetNotification
		agentCfg.OnLatency = appStore.SetServerLatency

		return agent.Dial(ctx, agentCfg, appLogger)
	}

	switch cfg.Feed.Kind {
	case config.FeedAgent:
		client, err := dialAgent()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to agent server: %w", err)
		}

		return client, client, nil

	case config.FeedBinance:
		p, err := provider.NewBinanceClient()
		if err != nil {
			return nil, nil, err
		}

		return provider.AsFetcher(p), nil, nil

	case config.FeedPolygon:
		p, err := provider.NewPolygonClient(cfg.Feed.PolygonAPIKey)
		if err != nil {
			return nil, nil, err
		}

		return provider.AsFetcher(p), nil, nil

	case config.FeedRouter:
		crypto, err := provider.NewBinanceClient()
		if err != nil {
			return nil, nil, err
		}

		var stock provider.Provider
		if cfg.Feed.PolygonAPIKey != "" {
			stock, err = provider.NewPolygonClient(cfg.Feed.PolygonAPIKey)
			if err != nil {
				return nil, nil, err
			}
		}

		var (
			fallback    provider.Fetcher
			agentClient *agent.Client
		)

		if cfg.Feed.AgentURL != "" {
			agentClient, err = dialAgent()
			if err != nil {
				// The router still serves classified assets without the agent.
				appLogger.Warn("agent server unavailable, routing without fallback")
			} else {
				fallback = agentClient
			}
		}

		return provider.NewRouter(localStore, crypto, stock, fallback), agentClient, nil

	default:
		return nil, nil, nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "chart",
		Usage: "Browse cached OHLCV series as terminal candle charts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "tradeterm.yaml",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Path to the cache directory (overrides configuration)",
			},
		},
		Action: chartAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
