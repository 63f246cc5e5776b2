package types

import "time"

// ScanMessage represents a WebSocket scan update message
type ScanMessage struct {
	ScanID     string    `json:"scanId"`
	Type       string    `json:"type"`          // "discovered", "root_failed", "complete"
	URI        string    `json:"uri,omitempty"` // discovered track URI
	Root       string    `json:"root,omitempty"`
	Discovered int       `json:"discovered"` // running total for this scan
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
