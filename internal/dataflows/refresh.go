package dataflows

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher runs the daily disclosure sync for a watchlist of tickers.
type Refresher struct {
	cron    *cron.Cron
	service *Service
	tickers []string
	log     zerolog.Logger
}

func NewRefresher(service *Service, tickers []string, log zerolog.Logger) *Refresher {
	return &Refresher{
		cron:    cron.New(),
		service: service,
		tickers: tickers,
		log:     log.With().Str("component", "refresher").Logger(),
	}
}

// Register schedules the sync job. spec is a standard 5-field cron
// expression, e.g. "30 18 * * 1-5" for weekday evenings after close.
func (r *Refresher) Register(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.syncAll); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	return nil
}

func (r *Refresher) Start() {
	r.cron.Start()
	r.log.Info().Int("tickers", len(r.tickers)).Msg("refresh scheduler started")
}

func (r *Refresher) Stop() {
	r.cron.Stop()
	r.log.Info().Msg("refresh scheduler stopped")
}

// RunNow executes the sync immediately, for manual trigger.
func (r *Refresher) RunNow() {
	r.syncAll()
}

func (r *Refresher) syncAll() {
	ctx := context.Background()
	for _, ticker := range r.tickers {
		if err := r.service.SyncDisclosures(ctx, ticker); err != nil {
			r.log.Error().Err(err).Str("ticker", ticker).Msg("disclosure sync failed")
			continue
		}
		r.log.Info().Str("ticker", ticker).Msg("disclosures synced")
	}
}
