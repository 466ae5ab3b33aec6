// Package session owns the dashboard's in-memory projection state: canonical
// snapshot rows, the current selection, and the two periodic cadences that
// keep display labels live between snapshot fetches.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"rentdash/internal/config"
	"rentdash/internal/projection"
	"rentdash/internal/rentapi"
	"rentdash/internal/retry"
	"rentdash/internal/selection"
	"rentdash/internal/snapshot"
	"rentdash/internal/workspace"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Client is the read-only rental API surface the session polls.
type Client interface {
	ListAccounts(ctx context.Context) ([]rentapi.AccountRecord, error)
	ListActiveRentals(ctx context.Context, workspaceID string) ([]rentapi.RentalRecord, error)
}

// Alerter receives rental-expiry events.
type Alerter interface {
	RentalExpired(ctx context.Context, accountName, buyer string)
}

type Config struct {
	// RefreshInterval is the snapshot-fetch cadence. DisplayInterval drives
	// label recomputation only and never performs I/O.
	RefreshInterval time.Duration
	DisplayInterval time.Duration
	Resilience      config.ResilienceConfig
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 30 * time.Second
	}
	if c.DisplayInterval <= 0 {
		c.DisplayInterval = 1 * time.Second
	}
	if c.Resilience.ProcessLoop.Timeout <= 0 {
		c.Resilience.ProcessLoop = config.DefaultResilienceConfig.ProcessLoop
	}
	if c.Resilience.AccountFetch.Timeout <= 0 {
		c.Resilience.AccountFetch = config.DefaultResilienceConfig.AccountFetch
	}
	if c.Resilience.RentalFetch.Timeout <= 0 {
		c.Resilience.RentalFetch = config.DefaultResilienceConfig.RentalFetch
	}
	return c
}

type expiredRental struct {
	accountName string
	buyer       string
}

// Session is safe for concurrent use: the run loop, the rendering layer and
// UI callbacks all funnel through one mutex.
type Session struct {
	client  Client
	alerter Alerter
	clock   clockwork.Clock
	cfg     Config

	onRender func(View)

	mu        sync.Mutex
	scope     workspace.Scope
	accounts  []snapshot.AccountRow
	rentals   []snapshot.RentalRow
	acctIndex map[snapshot.Key]snapshot.AccountRow
	sel       *selection.Reconciler
	alerted   map[snapshot.Key]bool
}

func New(client Client, alerter Alerter, clock clockwork.Clock, cfg Config) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Session{
		client:    client,
		alerter:   alerter,
		clock:     clock,
		cfg:       cfg.withDefaults(),
		acctIndex: make(map[snapshot.Key]snapshot.AccountRow),
		sel:       selection.NewReconciler(),
		alerted:   make(map[snapshot.Key]bool),
	}
}

// OnRender registers the callback invoked with a fresh view on every display
// tick. Must be set before Run.
func (s *Session) OnRender(fn func(View)) {
	s.onRender = fn
}

// Run refreshes once immediately, then services the display and refresh
// tickers until ctx is cancelled. Both tickers are stopped on teardown.
func (s *Session) Run(ctx context.Context) error {
	log.Info().
		Dur("refresh_interval", s.cfg.RefreshInterval).
		Dur("display_interval", s.cfg.DisplayInterval).
		Msg("Starting dashboard session")

	s.Refresh(ctx)
	s.render(ctx)

	display := s.clock.NewTicker(s.cfg.DisplayInterval)
	defer display.Stop()
	refresh := s.clock.NewTicker(s.cfg.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Dashboard session shutting down")
			return nil
		case <-display.Chan():
			s.render(ctx)
		case <-refresh.Chan():
			s.Refresh(ctx)
		}
	}
}

// Refresh fetches both snapshots and replaces the canonical row store
// wholesale, then re-evaluates the selection. The whole cycle runs under the
// process-loop retry preset; once that gives up, an entity type whose fetch
// still failed degrades to an empty row set while the other keeps its fresh
// rows.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()

	var accounts []snapshot.AccountRow
	var rentals []snapshot.RentalRow

	_, err := retry.WithRetry(ctx, s.cfg.Resilience.ProcessLoop, func(ctx context.Context) (struct{}, error) {
		var accountErr, rentalErr error
		accounts, accountErr = s.fetchAccounts(ctx)
		rentals, rentalErr = s.fetchRentals(ctx, scope.Workspace)
		return struct{}{}, errors.Join(accountErr, rentalErr)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Snapshot refresh degraded after retries")
	}

	s.mu.Lock()
	s.accounts = accounts
	s.rentals = rentals
	s.acctIndex = make(map[snapshot.Key]snapshot.AccountRow, len(accounts))
	for _, row := range accounts {
		s.acctIndex[row.Key] = row
	}
	s.reconcileLocked()
	expired := s.collectExpiredLocked(s.clock.Now())
	s.mu.Unlock()

	log.Debug().
		Int("accounts", len(accounts)).
		Int("rentals", len(rentals)).
		Msg("Snapshot refresh complete")

	s.notifyExpired(ctx, expired)
}

// SetScope switches the active workspace/platform filter. Membership is
// re-evaluated exactly as after a refresh.
func (s *Session) SetScope(scope workspace.Scope) {
	s.mu.Lock()
	s.scope = scope
	s.reconcileLocked()
	s.mu.Unlock()

	log.Debug().
		Str("workspace", scope.Workspace).
		Str("platform", scope.Platform).
		Msg("Scope changed")
}

// Scope returns the active filter.
func (s *Session) Scope() workspace.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// ToggleSelect selects key, or clears the selection when key is already
// selected.
func (s *Session) ToggleSelect(key snapshot.Key) {
	s.mu.Lock()
	s.sel.Toggle(key)
	s.mu.Unlock()
}

// SelectedKey returns the current selection, if any.
func (s *Session) SelectedKey() (snapshot.Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selected()
}

func (s *Session) fetchAccounts(ctx context.Context) ([]snapshot.AccountRow, error) {
	records, err := retry.WithRetry(ctx, s.cfg.Resilience.AccountFetch, func(ctx context.Context) ([]rentapi.AccountRecord, error) {
		return s.client.ListAccounts(ctx)
	})
	if err != nil {
		log.Debug().Err(err).Msg("Account fetch failed")
		return nil, err
	}

	rows := make([]snapshot.AccountRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, snapshot.NormalizeAccount(rec))
	}
	return rows, nil
}

func (s *Session) fetchRentals(ctx context.Context, workspaceID string) ([]snapshot.RentalRow, error) {
	records, err := retry.WithRetry(ctx, s.cfg.Resilience.RentalFetch, func(ctx context.Context) ([]rentapi.RentalRecord, error) {
		return s.client.ListActiveRentals(ctx, workspaceID)
	})
	if err != nil {
		log.Debug().Err(err).Msg("Rental fetch failed")
		return nil, err
	}

	// Observation instant is stamped fresh each fetch; it anchors match-clock
	// extrapolation until the next snapshot.
	observedAt := s.clock.Now()
	rows := make([]snapshot.RentalRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, snapshot.NormalizeRental(rec, observedAt))
	}
	return rows, nil
}

func (s *Session) reconcileLocked() {
	accountKeys := make(map[snapshot.Key]struct{})
	for _, row := range workspace.FilterAccounts(s.accounts, s.scope) {
		accountKeys[row.Key] = struct{}{}
	}
	rentalKeys := make(map[snapshot.Key]struct{})
	for _, row := range workspace.FilterRentals(s.rentals, s.scope) {
		rentalKeys[row.Key] = struct{}{}
	}
	s.sel.Reconcile(accountKeys, rentalKeys)
}

// collectExpiredLocked finds rentals whose countdown has just reached zero
// and arms them so each expiry alerts exactly once. Keys that left the
// snapshot are re-armed.
func (s *Session) collectExpiredLocked(now time.Time) []expiredRental {
	present := make(map[snapshot.Key]bool, len(s.rentals))
	var expired []expiredRental

	for _, row := range s.rentals {
		present[row.Key] = true

		parent, ok := s.acctIndex[row.Key]
		if !ok {
			continue
		}
		remaining, ok := projection.Remaining(parent.RentalStart, parent.RentalMinutes, now)
		if !ok || remaining > 0 {
			continue
		}
		if s.alerted[row.Key] {
			continue
		}
		s.alerted[row.Key] = true
		expired = append(expired, expiredRental{
			accountName: row.AccountName,
			buyer:       row.Buyer,
		})
	}

	for key := range s.alerted {
		if !present[key] {
			delete(s.alerted, key)
		}
	}
	return expired
}

func (s *Session) notifyExpired(ctx context.Context, expired []expiredRental) {
	if s.alerter == nil {
		return
	}
	for _, e := range expired {
		s.alerter.RentalExpired(ctx, e.accountName, e.buyer)
	}
}

func (s *Session) render(ctx context.Context) {
	s.mu.Lock()
	expired := s.collectExpiredLocked(s.clock.Now())
	s.mu.Unlock()
	s.notifyExpired(ctx, expired)

	if s.onRender != nil {
		s.onRender(s.Snapshot())
	}
}
