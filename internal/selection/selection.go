// Package selection keeps a single selected row identifier stable across
// snapshot refreshes and scope changes, dropping it only when the referenced
// entity truly disappears from both visible row sets.
package selection

import "rentdash/internal/snapshot"

// Reconciler is a two-state machine: Unselected, or Selected(key). It is not
// safe for concurrent use; the owning session serializes access.
type Reconciler struct {
	selected *snapshot.Key
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Toggle selects key, or clears the selection when key is already selected.
// Selecting over a different key switches directly to the new key.
func (r *Reconciler) Toggle(key snapshot.Key) {
	if r.selected != nil && *r.selected == key {
		r.selected = nil
		return
	}
	k := key
	r.selected = &k
}

// Clear drops the selection unconditionally.
func (r *Reconciler) Clear() {
	r.selected = nil
}

// Selected returns the current selection, if any.
func (r *Reconciler) Selected() (snapshot.Key, bool) {
	if r.selected == nil {
		return snapshot.Key{}, false
	}
	return *r.selected, true
}

// Reconcile re-evaluates the selection after a refresh or scope change. The
// selection survives as long as its key resolves in either filtered set;
// row content is irrelevant. The cause of the re-evaluation is not
// special-cased.
func (r *Reconciler) Reconcile(accountKeys, rentalKeys map[snapshot.Key]struct{}) {
	if r.selected == nil {
		return
	}
	if _, ok := accountKeys[*r.selected]; ok {
		return
	}
	if _, ok := rentalKeys[*r.selected]; ok {
		return
	}
	r.selected = nil
}
