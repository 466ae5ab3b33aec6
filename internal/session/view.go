package session

import (
	"strconv"
	"time"

	"rentdash/internal/projection"
	"rentdash/internal/snapshot"
	"rentdash/internal/workspace"
)

// View is what the rendering layer consumes: filtered rows with projected
// labels, the selected key, and the resolved detail account.
type View struct {
	GeneratedAt time.Time
	Accounts    []AccountView
	Rentals     []RentalView
	SelectedKey *string
	Detail      *AccountView
}

// Actions tells the rendering layer which buttons to enable for a row.
type Actions struct {
	Assign   bool
	Extend   bool
	Freeze   bool
	Unfreeze bool
	Release  bool
}

type AccountView struct {
	Key       string
	Platform  string
	Name      string
	Login     string
	SteamID   string
	MMR       string
	Status    snapshot.Status
	Renter    string
	Countdown string
	Actions   Actions
	Selected  bool
}

type RentalView struct {
	Key         string
	AccountName string
	Buyer       string
	StartedAt   string
	TimeLeft    string
	MatchClock  string
	Selected    bool
}

// Snapshot projects the current canonical rows into a view at the session
// clock's now. Called on every display tick; performs no I/O.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	view := View{GeneratedAt: now}

	selKey, selected := s.sel.Selected()
	if selected {
		keyStr := selKey.String()
		view.SelectedKey = &keyStr
	}

	visibleRentals := workspace.FilterRentals(s.rentals, s.scope)

	for _, row := range workspace.FilterAccounts(s.accounts, s.scope) {
		view.Accounts = append(view.Accounts, s.accountViewLocked(row, now, selected && row.Key == selKey))
	}
	for _, row := range visibleRentals {
		view.Rentals = append(view.Rentals, RentalView{
			Key:         row.Key.String(),
			AccountName: row.AccountName,
			Buyer:       row.Buyer,
			StartedAt:   row.StartedAt,
			TimeLeft:    s.rentalCountdownLocked(row, now),
			MatchClock:  projection.MatchClock(row, now),
			Selected:    selected && row.Key == selKey,
		})
	}

	if selected {
		view.Detail = s.resolveDetailLocked(selKey, visibleRentals, now)
	}
	return view
}

func (s *Session) accountViewLocked(row snapshot.AccountRow, now time.Time, isSelected bool) AccountView {
	return AccountView{
		Key:       row.Key.String(),
		Platform:  row.Platform,
		Name:      row.Name,
		Login:     row.Login,
		SteamID:   row.SteamID,
		MMR:       mmrLabel(row.MMR),
		Status:    row.Status,
		Renter:    stringOrDash(row.RenterID),
		Countdown: projection.Countdown(row.RentalStart, row.RentalMinutes, "-", now),
		Actions:   actionsFor(row.Status),
		Selected:  isSelected,
	}
}

// rentalCountdownLocked computes a rental's remaining time from its parent
// account's start and duration; without a resolvable parent the server's
// fallback string is used verbatim.
func (s *Session) rentalCountdownLocked(row snapshot.RentalRow, now time.Time) string {
	if parent, ok := s.acctIndex[row.Key]; ok {
		return projection.Countdown(parent.RentalStart, parent.RentalMinutes, row.TimeLeftFallback, now)
	}
	return row.TimeLeftFallback
}

// resolveDetailLocked maps the selected key to its detail account. A key only
// visible as a rental resolves through the unfiltered account index, so a
// rental under an active workspace filter still shows its parent account even
// when the account is filtered out of the inventory list.
func (s *Session) resolveDetailLocked(key snapshot.Key, visibleRentals []snapshot.RentalRow, now time.Time) *AccountView {
	for _, row := range workspace.FilterAccounts(s.accounts, s.scope) {
		if row.Key == key {
			detail := s.accountViewLocked(row, now, true)
			return &detail
		}
	}
	for _, row := range visibleRentals {
		if row.Key != key {
			continue
		}
		if parent, ok := s.acctIndex[key]; ok {
			detail := s.accountViewLocked(parent, now, true)
			return &detail
		}
		return nil
	}
	return nil
}

func actionsFor(status snapshot.Status) Actions {
	switch status {
	case snapshot.StatusAvailable:
		return Actions{Assign: true, Freeze: true}
	case snapshot.StatusRented:
		return Actions{Extend: true, Release: true, Freeze: true}
	case snapshot.StatusFrozen:
		return Actions{Unfreeze: true}
	default:
		return Actions{}
	}
}

func mmrLabel(mmr *int) string {
	if mmr == nil {
		return "-"
	}
	return strconv.Itoa(*mmr)
}

func stringOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}
