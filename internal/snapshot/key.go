package snapshot

import "fmt"

// Key identifies an account or rental across snapshot refreshes. Account and
// rental rows share the same key format; the two namespaces are kept apart by
// which row set a key is looked up in.
type Key struct {
	Workspace string
	AccountID int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Workspace, k.AccountID)
}

func (k Key) IsZero() bool {
	return k.Workspace == "" && k.AccountID == 0
}
