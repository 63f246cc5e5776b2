package types

import "time"

// ScanStatus represents the current status of a library scan
type ScanStatus string

const (
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
)

// ScanJob describes one background library scan across configured roots.
// A root failing does not fail the job; it is recorded and the scan of
// the remaining roots continues.
type ScanJob struct {
	ID          string     `json:"id"`
	Roots       []string   `json:"roots"`
	Status      ScanStatus `json:"status"`
	Discovered  int        `json:"discovered"`
	FailedRoots []string   `json:"failedRoots,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
