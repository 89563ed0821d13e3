package rx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellSetNotifiesOnChangeOnly(t *testing.T) {
	c := NewCell(1)
	var got []int
	off := Watch[int](c, func(v int) { got = append(got, v) })
	defer off()

	c.Set(1) // unchanged, no notify
	c.Set(2)
	c.Set(2)
	c.Set(3)

	assert.Equal(t, []int{2, 3}, got)
}

func TestWatchOffStopsNotifications(t *testing.T) {
	c := NewCell("a")
	n := 0
	off := Watch[string](c, func(string) { n++ })
	c.Set("b")
	off()
	c.Set("c")
	assert.Equal(t, 1, n)
}

func TestEffectRerunsOnDependencyChange(t *testing.T) {
	c := NewCell(0)
	runs := 0
	e := NewEffect(func(tr *Track) {
		_ = Read[int](tr, c)
		runs++
	})
	defer e.Stop()

	require.Equal(t, 1, runs)
	c.Set(1)
	assert.Equal(t, 2, runs)
}

func TestEffectCleanupRunsBeforeRerunAndOnStop(t *testing.T) {
	c := NewCell(0)
	var order []string
	e := NewEffect(func(tr *Track) {
		v := Read[int](tr, c)
		order = append(order, "run")
		tr.OnCleanup(func() { order = append(order, "cleanup") })
		_ = v
	})

	c.Set(1)
	e.Stop()

	assert.Equal(t, []string{"run", "cleanup", "run", "cleanup"}, order)
}

func TestEffectDynamicDependencies(t *testing.T) {
	use := NewCell(true)
	a := NewCell(0)
	b := NewCell(0)
	runs := 0
	e := NewEffect(func(tr *Track) {
		runs++
		if Read[bool](tr, use) {
			_ = Read[int](tr, a)
		} else {
			_ = Read[int](tr, b)
		}
	})
	defer e.Stop()

	require.Equal(t, 1, runs)
	b.Set(1) // not a dependency yet
	require.Equal(t, 1, runs)

	use.Set(false) // switch dependency set
	require.Equal(t, 2, runs)

	a.Set(1) // no longer tracked
	require.Equal(t, 2, runs)
	b.Set(2)
	assert.Equal(t, 3, runs)
}

func TestEffectStoppedNeverReruns(t *testing.T) {
	c := NewCell(0)
	runs := 0
	e := NewEffect(func(tr *Track) {
		_ = Read[int](tr, c)
		runs++
	})
	e.Stop()
	c.Set(5)
	assert.Equal(t, 1, runs)
}

func TestEffectWriteDuringRunDefersRerun(t *testing.T) {
	c := NewCell(0)
	runs := 0
	e := NewEffect(func(tr *Track) {
		v := Read[int](tr, c)
		runs++
		if v == 0 {
			c.Set(1) // must not re-enter the body
		}
	})
	defer e.Stop()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, c.Get())
}

func TestManualSchedulerLoop(t *testing.T) {
	s := &ManualScheduler{}
	ticks := 0
	stop := Loop(s, func() bool {
		ticks++
		return ticks < 3
	})
	defer stop()

	s.Step()
	s.Step()
	s.Step()
	s.Step() // loop ended itself after 3 ticks
	assert.Equal(t, 3, ticks)
}

func TestLoopStopCancelsPendingFrame(t *testing.T) {
	s := &ManualScheduler{}
	ticks := 0
	stop := Loop(s, func() bool {
		ticks++
		return true
	})
	stop()
	s.Step()
	assert.Equal(t, 0, ticks)
	assert.Equal(t, 0, s.Pending())
}
