package viewer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not finish")
	}
}

func TestSuperviseCleanExit(t *testing.T) {
	var h Health
	wait(t, Supervise(&h, nil, func() error { return nil }))
	assert.True(t, h.OK())
	assert.NoError(t, h.Err())
}

func TestSuperviseError(t *testing.T) {
	var h Health
	boom := errors.New("shader link failed")
	wait(t, Supervise(&h, nil, func() error { return boom }))
	assert.False(t, h.OK())
	assert.ErrorIs(t, h.Err(), boom)
}

func TestSupervisePanic(t *testing.T) {
	var h Health
	wait(t, Supervise(&h, nil, func() error {
		var m map[string]int
		m["x"]++
		return nil
	}))
	require.False(t, h.OK())
	assert.ErrorIs(t, h.Err(), ErrRenderPanic)
	assert.Contains(t, h.Err().Error(), "nil map")
}

func TestHealthPolledWhileRunning(t *testing.T) {
	var h Health
	release := make(chan struct{})
	done := Supervise(&h, nil, func() error {
		<-release
		panic("device lost")
	})

	assert.True(t, h.OK(), "healthy while the render loop runs")
	close(release)
	assert.Eventually(t, func() bool { return !h.OK() }, 2*time.Second, 5*time.Millisecond)
	wait(t, done)
}

func TestHealthKeepsFirstError(t *testing.T) {
	var h Health
	first := errors.New("first")
	h.fail(first)
	h.fail(errors.New("second"))
	assert.Equal(t, first, h.Err())
}
