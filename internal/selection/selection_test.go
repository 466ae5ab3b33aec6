package selection

import (
	"testing"

	"rentdash/internal/snapshot"

	"github.com/stretchr/testify/require"
)

func keySet(keys ...snapshot.Key) map[snapshot.Key]struct{} {
	set := make(map[snapshot.Key]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func TestToggle(t *testing.T) {
	r := NewReconciler()
	k1 := snapshot.Key{Workspace: "eu", AccountID: 1}
	k2 := snapshot.Key{Workspace: "eu", AccountID: 2}

	_, ok := r.Selected()
	require.False(t, ok)

	r.Toggle(k1)
	got, ok := r.Selected()
	require.True(t, ok)
	require.Equal(t, k1, got)

	// Selecting another row switches directly.
	r.Toggle(k2)
	got, _ = r.Selected()
	require.Equal(t, k2, got)

	// Selecting the selected row deselects.
	r.Toggle(k2)
	_, ok = r.Selected()
	require.False(t, ok)
}

func TestReconcileKeepsResolvableKey(t *testing.T) {
	k := snapshot.Key{Workspace: "eu", AccountID: 1}

	r := NewReconciler()
	r.Toggle(k)

	// Present as an account.
	r.Reconcile(keySet(k), keySet())
	_, ok := r.Selected()
	require.True(t, ok)

	// Present only as a rental.
	r.Reconcile(keySet(), keySet(k))
	_, ok = r.Selected()
	require.True(t, ok)
}

func TestReconcileClearsVanishedKey(t *testing.T) {
	k := snapshot.Key{Workspace: "eu", AccountID: 1}
	other := snapshot.Key{Workspace: "eu", AccountID: 2}

	r := NewReconciler()
	r.Toggle(k)
	r.Reconcile(keySet(other), keySet(other))

	_, ok := r.Selected()
	require.False(t, ok)
}

func TestReconcileNoopWhenUnselected(t *testing.T) {
	r := NewReconciler()
	r.Reconcile(keySet(), keySet())
	_, ok := r.Selected()
	require.False(t, ok)
}
