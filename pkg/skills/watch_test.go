package skills

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcherValidation(t *testing.T) {
	loader, err := NewLoader(WithWorkspaceDir(t.TempDir()))
	require.NoError(t, err)
	noop := func(context.Context, *Report) {}

	_, err = NewWatcher(nil, 0, noop)
	assert.Error(t, err)
	_, err = NewWatcher(loader, 0, nil)
	assert.Error(t, err)

	w, err := NewWatcher(loader, 0, noop)
	require.NoError(t, err)
	assert.Equal(t, DefaultWatchDebounce, w.debounce)
}

func TestIsSkillEvent(t *testing.T) {
	roots := []string{"/ws/skills"}
	assert.True(t, isSkillEvent("/ws/skills/demo/SKILL.md", roots))
	assert.True(t, isSkillEvent("/ws/skills/new-skill", roots))
	assert.False(t, isSkillEvent("/ws/skills/demo/notes.txt", roots))
	assert.False(t, isSkillEvent("/elsewhere/file", roots))
}

func TestWatcherReloadsDoNotOverlap(t *testing.T) {
	loader, err := NewLoader(WithWorkspaceDir(t.TempDir()), WithManagedDir(""), WithBundledDir(""))
	require.NoError(t, err)

	var active, peak, calls int32
	w, err := NewWatcher(loader, time.Millisecond, func(context.Context, *Report) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		atomic.AddInt32(&calls, 1)
	})
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reload(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	w.reload(cancelled)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls), "no reload after cancellation")
}

func TestWatcherReloadsOnChange(t *testing.T) {
	workspace := t.TempDir()
	skillsDir := filepath.Join(workspace, "skills")
	writeSkill(t, skillsDir, "first", skillDoc("first", "one"))

	loader, err := NewLoader(
		WithWorkspaceDir(workspace),
		WithManagedDir(""),
		WithBundledDir(""),
	)
	require.NoError(t, err)

	reloads := make(chan *Report, 8)
	w, err := NewWatcher(loader, 20*time.Millisecond, func(_ context.Context, r *Report) {
		reloads <- r
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register its directories
	time.Sleep(100 * time.Millisecond)
	writeSkill(t, skillsDir, "second", skillDoc("second", "two"))

	select {
	case report := <-reloads:
		assert.Eventually(t, func() bool {
			return len(report.Entries) == 2 || drainLatest(reloads, &report)
		}, 2*time.Second, 20*time.Millisecond)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

// drainLatest replaces report with a newer one when available and reports
// whether it has both skills
func drainLatest(reloads chan *Report, report **Report) bool {
	select {
	case r := <-reloads:
		*report = r
		return len(r.Entries) == 2
	default:
		return false
	}
}
