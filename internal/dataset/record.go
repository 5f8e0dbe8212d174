package dataset

import "time"

type Group string

const (
	GroupControl Group = "control"
	GroupVariant Group = "variant"
)

// Record is one simulated user session. Fields are fixed at generation time
// and never mutated; every analysis run reads the record set as a snapshot.
type Record struct {
	UserID    int64
	Group     Group
	Converted bool
	TimeSpent float64 // minutes
	Clicks    int
	Sessions  int
	Timestamp time.Time
}

// Columns lists the tabular layout of a persisted dataset, in export order.
var Columns = []string{"user_id", "group", "converted", "time_spent", "clicks", "session_count", "timestamp"}
