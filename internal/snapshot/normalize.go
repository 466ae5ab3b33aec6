package snapshot

import (
	"strconv"
	"strings"
	"time"

	"rentdash/internal/rentapi"
)

// AccountRow is the canonical, defensively coerced form of one inventory
// account. Rows are rebuilt wholesale on every snapshot fetch; only Key is
// guaranteed stable across fetches.
type AccountRow struct {
	Key      Key
	Platform string
	Name     string
	Login    string
	Password string
	SteamID  string

	// MMR is nil when the server value is absent or non-numeric ("unknown").
	MMR *int

	RenterID      *string
	RentalStart   *time.Time
	RentalMinutes *int

	Frozen        bool
	Deprioritized bool
	Status        Status
}

// Rented reports whether the account currently has a renter.
func (r AccountRow) Rented() bool {
	return r.RenterID != nil
}

// RentalRow is the canonical form of one active rental. ObservedAt is stamped
// at fetch time and never carried over from a previous snapshot; it anchors
// the match-clock extrapolation.
type RentalRow struct {
	Key         Key
	AccountName string
	Buyer       string
	StartedAt   string

	// TimeLeftFallback is the server-supplied remaining-time string, used
	// verbatim when no countdown can be computed locally.
	TimeLeftFallback string

	// MatchTimeRaw is the raw match-time token ("5:30", "1:02:03", "none", ...).
	// MatchSeconds is nil exactly when MatchTimeRaw failed to parse.
	MatchTimeRaw string
	MatchSeconds *int64

	ObservedAt time.Time
}

// NormalizeAccount maps a raw account record to its canonical row. It is pure
// and total: identical input yields identical output, and no input panics.
func NormalizeAccount(rec rentapi.AccountRecord) AccountRow {
	row := AccountRow{
		Key:           Key{Workspace: rec.WorkspaceID, AccountID: rec.ID},
		Platform:      rec.Platform,
		Name:          stringOr(rec.Name, ""),
		Login:         stringOr(rec.Login, ""),
		Password:      stringOr(rec.Password, ""),
		SteamID:       stringOr(rec.SteamID, ""),
		MMR:           coerceMMR(rec.MMR),
		Frozen:        coerceBool(rec.Frozen),
		Deprioritized: coerceBool(rec.Deprioritized),
	}

	if rec.RenterID != nil && *rec.RenterID != "" {
		renter := *rec.RenterID
		row.RenterID = &renter

		// Start and duration only mean anything while a renter is present.
		if rec.RentalStart != nil {
			if start, ok := ParseTimestamp(*rec.RentalStart); ok {
				row.RentalStart = &start
			}
		}
		if rec.RentalMinutes != nil && *rec.RentalMinutes > 0 {
			minutes := *rec.RentalMinutes
			row.RentalMinutes = &minutes
		}
	}

	row.Status = DeriveStatus(row.Deprioritized, row.Frozen, row.Rented())
	return row
}

// NormalizeRental maps a raw rental record to its canonical row, stamping
// observedAt as the instant the match-time value was captured.
func NormalizeRental(rec rentapi.RentalRecord, observedAt time.Time) RentalRow {
	row := RentalRow{
		Key:              Key{Workspace: rec.WorkspaceID, AccountID: rec.AccountID},
		AccountName:      stringOr(rec.AccountName, ""),
		Buyer:            stringOr(rec.Buyer, ""),
		StartedAt:        stringOr(rec.StartedAt, ""),
		TimeLeftFallback: stringOr(rec.TimeLeft, "-"),
		MatchTimeRaw:     stringOr(rec.MatchTime, "none"),
	}

	if seconds, ok := ParseDurationSeconds(row.MatchTimeRaw); ok {
		row.MatchSeconds = &seconds
		row.ObservedAt = observedAt
	}
	return row
}

// ParseDurationSeconds parses a duration token: a bare integer (seconds),
// M:SS, or H:MM:SS. Any other shape reports false.
func ParseDurationSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a server timestamp. Zoned strings are parsed as
// given; naive strings are assumed UTC. Whether naive server timestamps are
// really UTC depends on the server deployment, which this layer cannot see.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// coerceBool maps whatever the server stored in a flag column to a bool:
// nil, false, 0, "", "0" and "false" are false, anything else is true.
func coerceBool(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(value))
		return s != "" && s != "0" && s != "false"
	default:
		return true
	}
}

// coerceMMR keeps a stored numeric rating as a number and turns everything
// else into the "unknown" sentinel (nil), never zero.
func coerceMMR(v any) *int {
	switch value := v.(type) {
	case float64:
		mmr := int(value)
		return &mmr
	case int:
		mmr := value
		return &mmr
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			mmr := int(f)
			return &mmr
		}
	}
	return nil
}
