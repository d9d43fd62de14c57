package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/bubbly/pkg/core"
)

func TestDebouncer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var (
		mu  sync.Mutex
		got []core.KeyEvent
	)
	record := func(e core.KeyEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}

	d := newDebouncer(30 * time.Millisecond)
	d.add(core.KeyEvent{Type: core.KeyCreate, Key: "notes"}, record)
	d.add(core.KeyEvent{Type: core.KeyModify, Key: "notes"}, record)
	d.add(core.KeyEvent{Type: core.KeyModify, Key: "events"}, record)
	assert.Equal(t, 2, d.pending())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	byKey := map[string]core.KeyEventType{}
	for _, e := range got {
		byKey[e.Key] = e.Type
	}
	mu.Unlock()
	assert.Equal(t, map[string]core.KeyEventType{"notes": core.KeyModify, "events": core.KeyModify}, byKey,
		"only the last event per key is delivered")

	assert.True(t, d.stopAndWait(time.Second))
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fired := make(chan core.KeyEvent, 1)
	d := newDebouncer(time.Hour)
	d.add(core.KeyEvent{Key: "settings"}, func(e core.KeyEvent) { fired <- e })

	assert.True(t, d.stopAndWait(time.Second))
	assert.Zero(t, d.pending())

	// Adds after stop are ignored.
	d.add(core.KeyEvent{Key: "settings"}, func(e core.KeyEvent) { fired <- e })
	assert.Zero(t, d.pending())
	assert.Empty(t, fired)
}
