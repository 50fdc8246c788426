// Package feed ties the live-data layer together: direct-exchange providers,
// download writers, and a validated facade used by the downloader CLI.
package feed

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/provider"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/writer"
)

// WriterType defines the type of download writer.
type WriterType string

const (
	WriterCSV    WriterType = "csv"
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the download client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=binance polygon"`
	WriterType    WriterType            `validate:"required,oneof=csv duckdb"`
	OutDir        string                `validate:"required"`
	PolygonAPIKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for one download request.
type DownloadParams struct {
	Asset    string         `validate:"required"`
	Interval types.Interval `validate:"required,oneof=1h 1d 1w 1M"`
	Start    time.Time      `validate:"required"`
	End      time.Time      `validate:"required,gtfield=Start"`
}

// Client downloads historical series from a provider and stores them through
// a writer, producing files laid out the way the chart cache expects.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a download client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var cfg any
	if config.ProviderType == provider.ProviderPolygon {
		cfg = config.PolygonAPIKey
	}

	marketProvider, err := provider.NewProvider(config.ProviderType, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download executes one download and returns the path of the produced file.
// The context can be used to cancel the operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	seriesWriter, outputPath := c.setupWriter(params)

	if err := seriesWriter.Initialize(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "initialize writer at %s", outputPath)
	}

	defer func() {
		_ = seriesWriter.Close()
	}()

	err := c.provider.Download(ctx, params.Asset, params.Interval, params.Start, params.End, seriesWriter, c.onProgress)
	if err != nil {
		return "", err
	}

	path, err := seriesWriter.Finalize()
	if err != nil {
		return "", err
	}

	return path, nil
}

func (c *Client) setupWriter(params DownloadParams) (writer.SeriesWriter, string) {
	path := c.OutputPath(params)

	switch c.config.WriterType {
	case WriterDuckDB:
		return writer.NewDuckDBWriter(path, params.Asset), path
	default:
		return writer.NewCSVWriter(path), path
	}
}

// OutputPath returns where a download with the given parameters lands,
// matching the cache manifest layout: the venue subdirectory plus
// "<asset stem>-<interval suffix>.<ext>".
func (c *Client) OutputPath(params DownloadParams) string {
	ext := ".csv"
	if c.config.WriterType == WriterDuckDB {
		ext = ".parquet"
	}

	name := assetFileStem(c.config.ProviderType, params.Asset) +
		"-" + intervalFileSuffix(params.Interval) + ext

	return filepath.Join(c.config.OutDir, venueDir(c.config.ProviderType), name)
}

func venueDir(p provider.ProviderType) string {
	if p == provider.ProviderPolygon {
		return "StockUS"
	}

	return "Binance"
}

// assetFileStem mirrors the cache file naming: Binance files carry the quote
// currency ("btc" → "btc_usdt"), stock files are the bare lowercase ticker.
func assetFileStem(p provider.ProviderType, asset string) string {
	stem := strings.ToLower(asset)

	if p == provider.ProviderBinance && !strings.Contains(stem, "_") {
		stem += "_usdt"
	}

	return stem
}

func intervalFileSuffix(interval types.Interval) string {
	switch interval {
	case types.IntervalOneHour:
		return "1hour"
	case types.IntervalOneDay:
		return "1day"
	case types.IntervalOneWeek:
		return "1week"
	case types.IntervalOneMonth:
		return "1mon"
	default:
		return string(interval)
	}
}
