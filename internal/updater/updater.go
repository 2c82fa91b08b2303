// Package updater runs one refresh of the local set files: resolve the
// dataset, check the marker, download, split by set, write, advance marker.
package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"setsplitter/internal/config"
	"setsplitter/internal/freshness"
	"setsplitter/internal/logger"
	"setsplitter/internal/models"
	"setsplitter/internal/partition"
	"setsplitter/internal/scryfall"
	"setsplitter/internal/writer"
)

// Progress lines printed for the user.
const (
	MsgNoMarker  = "Last update timestamp not found, downloading update..."
	MsgOutdated  = "Local files are out-of-date, downloading update..."
	MsgForced    = "Update forced, downloading update..."
	MsgFresh     = "Local files are already fresh, don't need to download, exiting."
	MsgDownload  = "Bulk data download complete, splitting into sets..."
	MsgCompleted = "Set files complete and ready for use in Magic Album, exiting."
)

// CardSource resolves a dataset and downloads its cards.
type CardSource interface {
	ResolveDataset(ctx context.Context, datasetType string) (*scryfall.Dataset, error)
	DownloadCards(ctx context.Context, uri string) ([]models.Card, error)
}

// Options tune a run.
type Options struct {
	DatasetType string
	// Force downloads and rewrites even when the marker is current.
	Force bool
}

// Result reports what a run did.
type Result struct {
	RunID           string
	RemoteUpdatedAt string
	LocalUpdatedAt  string
	Summary         *writer.Summary
	Cards           int
	Duration        time.Duration
	HadMarker       bool
	Fresh           bool
}

// Updater wires the phases together.
type Updater struct {
	source   CardSource
	marker   *freshness.Marker
	writer   *writer.SetWriter
	logger   *logger.Logger
	progress io.Writer
	opts     Options
}

// New creates an updater from its parts. progress receives the user-facing
// status lines and may be io.Discard.
func New(source CardSource, marker *freshness.Marker, w *writer.SetWriter, log *logger.Logger, progress io.Writer, opts Options) *Updater {
	if opts.DatasetType == "" {
		opts.DatasetType = config.DefaultDatasetType
	}

	return &Updater{
		source:   source,
		marker:   marker,
		writer:   w,
		logger:   log,
		progress: progress,
		opts:     opts,
	}
}

// NewFromConfig builds the Scryfall client, marker and writer described by cfg.
func NewFromConfig(cfg *config.Config, log *logger.Logger, progress io.Writer, force bool) *Updater {
	return New(
		scryfall.NewClient(&cfg.Source, log),
		freshness.NewMarker(cfg.Output.MarkerPath),
		writer.NewSetWriter(cfg.Output.Dir, cfg.Output.Suffix, log),
		log,
		progress,
		Options{DatasetType: cfg.Source.DatasetType, Force: force},
	)
}

// Run performs one refresh. When the marker is already current it returns
// a Result with Fresh set and touches nothing. The marker is only advanced
// after every set file has been committed.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	result := &Result{RunID: uuid.NewString()}
	log := u.logger.With("run_id", result.RunID)

	log.Debug("resolving dataset", "type", u.opts.DatasetType)

	dataset, err := u.source.ResolveDataset(ctx, u.opts.DatasetType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset: %w", err)
	}

	result.RemoteUpdatedAt = dataset.UpdatedAt

	local, haveLocal, err := u.marker.Read()
	if err != nil {
		return nil, err
	}

	result.LocalUpdatedAt = local
	result.HadMarker = haveLocal

	log.Info("freshness check", "remote", dataset.UpdatedAt, "local", local, "have_local", haveLocal)

	stale := freshness.IsStale(dataset.UpdatedAt, local, haveLocal)

	switch {
	case !stale && !u.opts.Force:
		u.say(MsgFresh)

		result.Fresh = true
		result.Duration = time.Since(startTime)

		return result, nil
	case !haveLocal:
		u.say(MsgNoMarker)
	case !stale:
		log.Warn("marker is current, forcing download", "remote", dataset.UpdatedAt, "local", local)
		u.say(MsgForced)
	default:
		u.say(MsgOutdated)
	}

	cards, err := u.source.DownloadCards(ctx, dataset.DownloadURI)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset: %w", err)
	}

	result.Cards = len(cards)

	log.Info("dataset downloaded", "cards", len(cards), "elapsed", time.Since(startTime))
	u.say(MsgDownload)

	table := partition.BySet(cards)

	summary, err := u.writer.WriteAll(table)
	if err != nil {
		return nil, fmt.Errorf("failed to write set files: %w", err)
	}

	result.Summary = summary

	if err := u.marker.Write(dataset.UpdatedAt); err != nil {
		return nil, fmt.Errorf("set files written but marker not advanced: %w", err)
	}

	result.Duration = time.Since(startTime)

	log.Info("update complete",
		"sets", len(summary.Sets),
		"cards", summary.TotalCards(),
		"bytes", summary.TotalBytes(),
		"elapsed", result.Duration,
	)
	u.say(MsgCompleted)

	return result, nil
}

func (u *Updater) say(msg string) {
	fmt.Fprintln(u.progress, msg)
}
