package state

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffxlabs/ffxproj/internal/storage"
)

func TestScheduler_TicksInvokeSaveFunc(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(nil, nil)
	s.SetSaveFunc(func() error {
		calls.Add(1)
		return nil
	})

	s.Start(5 * time.Millisecond)
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 2 },
		time.Second, time.Millisecond)
}

func TestScheduler_NoSaveFuncSkipsTicks(t *testing.T) {
	gateCalls := atomic.Int64{}
	s := NewScheduler(func() bool { gateCalls.Add(1); return true }, nil)

	s.Start(5 * time.Millisecond)
	defer s.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, gateCalls.Load(), "without a registered routine nothing runs, not even the gate")
}

func TestScheduler_GateBlocksTicks(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(func() bool { return false }, nil)
	s.SetSaveFunc(func() error {
		calls.Add(1)
		return nil
	})

	s.Start(5 * time.Millisecond)
	defer s.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestScheduler_FailuresDoNotStopTheSchedule(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(nil, nil)
	s.SetSaveFunc(func() error {
		if calls.Add(1)%2 == 1 {
			panic("flaky disk")
		}
		return fmt.Errorf("still flaky")
	})

	s.Start(5 * time.Millisecond)
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 4 },
		time.Second, time.Millisecond, "both panics and errors are absorbed")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(nil, nil)
	s.Start(time.Hour)
	require.True(t, s.Running())

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
}

func TestScheduler_RestartReplacesInterval(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler(nil, nil)
	s.SetSaveFunc(func() error {
		calls.Add(1)
		return nil
	})

	s.Start(time.Hour)
	s.Start(5 * time.Millisecond)
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 1 },
		time.Second, time.Millisecond)
}

func TestScheduler_NonPositiveIntervalIgnored(t *testing.T) {
	s := NewScheduler(nil, nil)
	s.Start(0)
	assert.False(t, s.Running())
}

func TestManager_AutoSaveFollowsSettings(t *testing.T) {
	svc := newMemoryService()
	mgr := NewManager(
		storageGateway(svc),
		WithClock(NewManualClock(testInstant)),
		WithIDGenerator(&seqIDGenerator{}),
		WithHostname("workstation-7"),
	)
	t.Cleanup(func() { mgr.ClearProject(true) })

	doc, err := mgr.CreateProject("/case/001")
	require.NoError(t, err)
	require.True(t, doc.Settings.AutoSave)
	assert.True(t, mgr.AutoSaveRunning(), "timer active while auto_save is on")

	settings := doc.Settings
	settings.AutoSave = false
	mgr.UpdateSettings(settings)
	assert.False(t, mgr.AutoSaveRunning(), "timer stops when auto_save is turned off")

	settings.AutoSave = true
	settings.AutoSaveIntervalSeconds = 1
	mgr.UpdateSettings(settings)
	assert.True(t, mgr.AutoSaveRunning())

	require.NoError(t, mgr.ClearProject(true))
	assert.False(t, mgr.AutoSaveRunning(), "clearing the project stops the timer")
}

func TestManager_AutoSaveWritesWhenDirty(t *testing.T) {
	svc := newMemoryService()
	mgr := NewManager(
		storageGateway(svc),
		WithIDGenerator(&seqIDGenerator{}),
		WithHostname("workstation-7"),
	)
	t.Cleanup(func() { mgr.ClearProject(true) })
	mgr.SetAutoSaveFunc(func() error {
		return mgr.Save(context.Background(), SaveOptions{}, "").Err
	})

	doc, err := mgr.CreateProject("/case/001")
	require.NoError(t, err)

	settings := doc.Settings
	settings.AutoSaveIntervalSeconds = 1
	mgr.UpdateSettings(settings)

	// No path is known yet, so ticks stay gated until the first manual save.
	first := mgr.Save(context.Background(), SaveOptions{}, "")
	require.NoError(t, first.Err)

	mgr.AddRecentSearch("autosave me")
	require.True(t, mgr.Dirty())

	require.Eventually(t, func() bool { return !mgr.Dirty() },
		5*time.Second, 20*time.Millisecond, "a tick saved the dirty document")

	saved, found := svc.stored(first.Path)
	require.True(t, found)
	assert.Equal(t, []string{"autosave me"}, saved.RecentSearches)
}

func TestManager_AutoSaveDisabledOverridesSettings(t *testing.T) {
	h := newTestHarness(t)

	doc, err := h.mgr.CreateProject("/case/001")
	require.NoError(t, err)
	require.True(t, doc.Settings.AutoSave)

	assert.False(t, h.mgr.AutoSaveRunning(), "master switch wins over document settings")
}

func storageGateway(svc *memoryService) *storage.Gateway {
	return storage.NewGateway(svc, &cannedPrompter{}, nil, nil)
}
