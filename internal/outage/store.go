package outage

// Store is the key-value blob persistence the ledger lives in. The
// whole ledger is stored under a single fixed key.
type Store interface {
	// Get returns the blob for key; found is false when the key is absent
	Get(key string) (value []byte, found bool, err error)
	// Set writes the blob for key, replacing any previous value
	Set(key string, value []byte) error
	// Delete removes the key if present
	Delete(key string) error
}
