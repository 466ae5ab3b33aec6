package workspace

import (
	"testing"

	"rentdash/internal/snapshot"

	"github.com/stretchr/testify/require"
)

func account(ws, platform string, id int64) snapshot.AccountRow {
	return snapshot.AccountRow{
		Key:      snapshot.Key{Workspace: ws, AccountID: id},
		Platform: platform,
	}
}

func rental(ws string, id int64) snapshot.RentalRow {
	return snapshot.RentalRow{Key: snapshot.Key{Workspace: ws, AccountID: id}}
}

func TestFilterAccounts(t *testing.T) {
	rows := []snapshot.AccountRow{
		account("eu", "steam", 1),
		account("eu", "epic", 2),
		account("na", "steam", 3),
	}

	require.Len(t, FilterAccounts(rows, Scope{}), 3)
	require.Len(t, FilterAccounts(rows, Scope{Workspace: "eu"}), 2)
	require.Len(t, FilterAccounts(rows, Scope{Platform: "steam"}), 2)

	both := FilterAccounts(rows, Scope{Workspace: "eu", Platform: "steam"})
	require.Len(t, both, 1)
	require.Equal(t, int64(1), both[0].Key.AccountID)

	require.Empty(t, FilterAccounts(rows, Scope{Workspace: "asia"}))
}

func TestFilterRentalsIgnoresPlatform(t *testing.T) {
	rows := []snapshot.RentalRow{rental("eu", 1), rental("na", 2)}

	require.Len(t, FilterRentals(rows, Scope{}), 2)
	require.Len(t, FilterRentals(rows, Scope{Platform: "steam"}), 2)

	eu := FilterRentals(rows, Scope{Workspace: "eu", Platform: "steam"})
	require.Len(t, eu, 1)
	require.Equal(t, "eu", eu[0].Key.Workspace)
}

func TestScopeIsAll(t *testing.T) {
	require.True(t, Scope{}.IsAll())
	require.False(t, Scope{Workspace: "eu"}.IsAll())
	require.False(t, Scope{Platform: "steam"}.IsAll())
}
