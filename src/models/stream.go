package models

type StreamState string

const (
	StreamPending StreamState = "pending"
	StreamReady   StreamState = "ready"
	StreamError   StreamState = "error"
)

// StreamStatus is the per-source refresh state pushed to subscribers. The
// last known status for each source is replayed on connect.
type StreamStatus struct {
	Source Source      `json:"source"`
	State  StreamState `json:"state"`
	Error  string      `json:"error,omitempty"`
}

// StreamUpdate carries fresh source data after a successful refresh.
// Delivery is at-least-once, last-value-wins.
type StreamUpdate struct {
	Source Source      `json:"source"`
	Data   interface{} `json:"data"`
}
