package workspace

import "rentdash/internal/snapshot"

// Scope is the active workspace/platform pair. An empty field places no
// constraint on that dimension.
type Scope struct {
	Workspace string
	Platform  string
}

// IsAll reports whether the scope matches every row.
func (s Scope) IsAll() bool {
	return s.Workspace == "" && s.Platform == ""
}

// MatchesAccount reports whether an account row is visible under the scope.
func (s Scope) MatchesAccount(row snapshot.AccountRow) bool {
	if s.Workspace != "" && row.Key.Workspace != s.Workspace {
		return false
	}
	if s.Platform != "" && row.Platform != s.Platform {
		return false
	}
	return true
}

// MatchesRental reports whether a rental row is visible under the scope.
// Rentals carry no platform of their own; only the workspace applies.
func (s Scope) MatchesRental(row snapshot.RentalRow) bool {
	return s.Workspace == "" || row.Key.Workspace == s.Workspace
}

// FilterAccounts returns the subset of rows visible under the scope.
func FilterAccounts(rows []snapshot.AccountRow, s Scope) []snapshot.AccountRow {
	if s.IsAll() {
		return rows
	}
	var filtered []snapshot.AccountRow
	for _, row := range rows {
		if s.MatchesAccount(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FilterRentals returns the subset of rows visible under the scope.
func FilterRentals(rows []snapshot.RentalRow, s Scope) []snapshot.RentalRow {
	if s.Workspace == "" {
		return rows
	}
	var filtered []snapshot.RentalRow
	for _, row := range rows {
		if s.MatchesRental(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
