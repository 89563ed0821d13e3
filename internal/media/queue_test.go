package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueLastWriteWins(t *testing.T) {
	q := NewRequestQueue()
	q.Enqueue(&Request{Type: RequestSeeked, Detail: 10.0})
	q.Enqueue(&Request{Type: RequestSeeked, Detail: 20.0})
	assert.Equal(t, 1, q.Size())

	req := q.Serve(RequestSeeked)
	require.NotNil(t, req)
	assert.Equal(t, 20.0, req.Detail)
	assert.Nil(t, q.Serve(RequestSeeked))
}

func TestQueueIndependentCategories(t *testing.T) {
	q := NewRequestQueue()
	q.Enqueue(&Request{Type: RequestPlay})
	q.Enqueue(&Request{Type: RequestVolume})
	assert.Equal(t, 2, q.Size())

	assert.NotNil(t, q.Serve(RequestPlay))
	assert.NotNil(t, q.Serve(RequestVolume))
	assert.Equal(t, 0, q.Size())
}

func TestQueueDeleteAndReset(t *testing.T) {
	q := NewRequestQueue()
	q.Enqueue(&Request{Type: RequestPause})
	q.Delete(RequestPause)
	assert.Nil(t, q.Serve(RequestPause))

	q.Enqueue(&Request{Type: RequestPlay})
	q.Enqueue(&Request{Type: RequestFullscreen})
	q.Reset()
	assert.Equal(t, 0, q.Size())
}

func TestQueueNilEnqueue(t *testing.T) {
	q := NewRequestQueue()
	q.Enqueue(nil)
	assert.Equal(t, 0, q.Size())
}
