package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/feed"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/provider"
)

// fetchAction parses arguments, sets up the download client, and runs the
// download, writing the result into the chart's cache layout.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	asset := cmd.String("asset")
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	providerFlag := cmd.String("provider")
	writerFlag := cmd.String("writer")
	outDir := cmd.String("out")

	interval, err := types.ParseInterval(cmd.String("interval"))
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	onProgress := func(current float64, total float64, message string) {
		if total <= 0 {
			return
		}

		bar.Describe(message)
		_ = bar.Set(int(current / total * 100))
	}

	client, err := feed.NewClient(feed.ClientConfig{
		ProviderType:  provider.ProviderType(providerFlag),
		WriterType:    feed.WriterType(writerFlag),
		OutDir:        outDir,
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
	}, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create download client: %w", err)
	}

	log.Printf("Starting download for %s (%s) from %s to %s using %s provider and %s writer...",
		asset, interval, start.Format("2006-01-02"), end.Format("2006-01-02"), providerFlag, writerFlag)

	path, err := client.Download(ctx, feed.DownloadParams{
		Asset:    asset,
		Interval: interval,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	_ = bar.Finish()
	log.Printf("Download completed: %s", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "fetch",
		Usage: "Download historical OHLCV series into the chart cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "asset",
				Aliases:  []string{"a"},
				Usage:    "Asset to download (e.g., btc, msft)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Candle interval: 1h, 1d, 1w or 1M",
				Value:   "1d",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.ProviderBinance, provider.ProviderPolygon),
				Value:   string(provider.ProviderBinance),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (%s, %s)", feed.WriterCSV, feed.WriterDuckDB),
				Value:   string(feed.WriterCSV),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Path to the cache output directory",
				Value:   "cache",
			},
		},
		Action: fetchAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
