package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(100, 0)
	p := newProfiler(func() time.Time { return now })

	for range 29 {
		now = now.Add(30 * time.Millisecond)
		_, ok := p.Tick()
		require.False(t, ok)
	}

	now = now.Add(130 * time.Millisecond)
	st, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 30.0, st.FPS, 1e-9)
	assert.Greater(t, st.HeapMB, 0.0)

	now = now.Add(10 * time.Millisecond)
	_, ok = p.Tick()
	assert.False(t, ok)
}
