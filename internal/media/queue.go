package media

import (
	"sync"
	"time"
)

// RequestType keys the attribution ledger.
type RequestType string

const (
	RequestPlay       RequestType = "play"
	RequestPause      RequestType = "pause"
	RequestSeeking    RequestType = "seeking"
	RequestSeeked     RequestType = "seeked"
	RequestVolume     RequestType = "volume"
	RequestFullscreen RequestType = "fullscreen"
	RequestUserIdle   RequestType = "userIdle"
	RequestLoad       RequestType = "load"
)

// Request is the UI intent that triggered a state mutation. Trusted
// marks requests originating from a direct user gesture.
type Request struct {
	Type    RequestType
	Trusted bool
	Detail  any
	Time    time.Time
}

// RequestQueue correlates a causing request with the state change it
// eventually produces, for event attribution only. At most one entry
// per category; last write wins. Entries are telemetry and are never
// consulted for control decisions.
type RequestQueue struct {
	mu      sync.Mutex
	pending map[RequestType]*Request
}

func NewRequestQueue() *RequestQueue {
	return &RequestQueue{pending: make(map[RequestType]*Request)}
}

// Enqueue records req as the pending cause for its category, replacing
// any earlier entry.
func (q *RequestQueue) Enqueue(req *Request) {
	if req == nil {
		return
	}
	q.mu.Lock()
	q.pending[req.Type] = req
	q.mu.Unlock()
}

// Serve removes and returns the pending request for t, or nil. Called
// by whichever handler observes the corresponding state settle.
func (q *RequestQueue) Serve(t RequestType) *Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	req := q.pending[t]
	delete(q.pending, t)
	return req
}

// Delete abandons the pending request for t without serving it.
func (q *RequestQueue) Delete(t RequestType) {
	q.mu.Lock()
	delete(q.pending, t)
	q.mu.Unlock()
}

// Reset clears all pending attribution.
func (q *RequestQueue) Reset() {
	q.mu.Lock()
	q.pending = make(map[RequestType]*Request)
	q.mu.Unlock()
}

// Size reports the number of pending entries.
func (q *RequestQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
