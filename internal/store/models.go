package store

import "time"

// Dataset is one persisted synthetic dataset. Records are stored alongside
// it and treated as an immutable snapshot by every analysis run.
type Dataset struct {
	ID        string
	Name      string
	NTotal    int
	Seed      uint64
	CreatedAt time.Time
}

// SavedReport is one persisted analysis report, stored as the exact JSON
// served to the dashboard.
type SavedReport struct {
	ID        string
	DatasetID string
	Body      []byte
	CreatedAt time.Time
}
