package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func accessoryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accessories.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func startWatcher(t *testing.T, w *Watcher[Accessories]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := accessoryFile(t, "mode = \"normal\"\n")

	received := make(chan Accessories, 1)
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
	)
	watcher.OnReload(func(a Accessories) {
		received <- a
	})
	startWatcher(t, watcher)

	if err := os.WriteFile(path, []byte("mode = \"in_call\"\ndual_mic = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case a := <-received:
		if a.Mode != "in_call" || !a.DualMic {
			t.Errorf("got %+v, want in_call with dual mic", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_InitialLoad(t *testing.T) {
	path := accessoryFile(t, "anc = true\n")

	received := make(chan Accessories, 1)
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithInitialLoad[Accessories](),
	)
	watcher.OnReload(func(a Accessories) {
		received <- a
	})
	startWatcher(t, watcher)

	select {
	case a := <-received:
		if !a.ANC {
			t.Errorf("got %+v, want anc", a)
		}
	default:
		t.Fatal("initial load should be delivered during Start")
	}
}

func TestConfigWatcher_RenameReplace(t *testing.T) {
	path := accessoryFile(t, "tty_mode = \"off\"\n")

	received := make(chan Accessories, 1)
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
	)
	watcher.OnReload(func(a Accessories) {
		received <- a
	})
	startWatcher(t, watcher)

	tmp := path + ".new"
	if err := os.WriteFile(tmp, []byte("tty_mode = \"vco\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case a := <-received:
		if a.TTYMode != "vco" {
			t.Errorf("got %+v, want vco", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresSiblings(t *testing.T) {
	path := accessoryFile(t, "")

	var count atomic.Int32
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](20*time.Millisecond),
	)
	watcher.OnReload(func(Accessories) {
		count.Add(1)
	})
	startWatcher(t, watcher)

	sibling := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(sibling, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no reloads for sibling files, got %d", got)
	}
}

func TestConfigWatcher_MultipleHandlers(t *testing.T) {
	path := accessoryFile(t, "")

	var count atomic.Int32
	var got []Accessories
	var mu sync.Mutex

	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
	)
	for range 3 {
		watcher.OnReload(func(a Accessories) {
			count.Add(1)
			mu.Lock()
			got = append(got, a)
			mu.Unlock()
		})
	}
	startWatcher(t, watcher)

	if err := os.WriteFile(path, []byte("bt_vgs = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := count.Load(); n != 3 {
		t.Errorf("expected 3 handlers called, got %d", n)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, a := range got {
		if !a.BTVGS {
			t.Errorf("handler %d got wrong config: %+v", i, a)
		}
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := accessoryFile(t, "")

	var count1, count2 atomic.Int32
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
	)
	watcher.OnReload(func(Accessories) { count1.Add(1) })
	unsub2 := watcher.OnReload(func(Accessories) { count2.Add(1) })
	startWatcher(t, watcher)

	if err := os.WriteFile(path, []byte("anc = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	unsub2()

	if err := os.WriteFile(path, []byte("anc = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := accessoryFile(t, "")

	errorReceived := make(chan error, 1)
	configReceived := make(chan Accessories, 1)

	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
		WithErrorHandler[Accessories](func(err error) {
			errorReceived <- err
		}),
	)
	watcher.OnReload(func(a Accessories) {
		configReceived <- a
	})
	startWatcher(t, watcher)

	if err := os.WriteFile(path, []byte("mode = \"sideways\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errorReceived:
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := accessoryFile(t, "")

	var count atomic.Int32
	var last atomic.Value

	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](200*time.Millisecond),
	)
	watcher.OnReload(func(a Accessories) {
		count.Add(1)
		last.Store(a.TTYMode)
	})
	startWatcher(t, watcher)

	for _, tty := range []string{"full", "hco", "vco", "off", "full"} {
		if err := os.WriteFile(path, fmt.Appendf(nil, "tty_mode = %q\n", tty), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got, _ := last.Load().(string); got != "full" {
		t.Errorf("expected final tty_mode full, got %q", got)
	}
}

func TestConfigWatcher_ThreadSafety(t *testing.T) {
	path := accessoryFile(t, "")

	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](10*time.Millisecond),
	)
	startWatcher(t, watcher)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := watcher.OnReload(func(Accessories) {})
			time.Sleep(time.Millisecond)
			unsub()
		}()
	}

	for i := range 10 {
		if err := os.WriteFile(path, fmt.Appendf(nil, "dual_mic = %t\n", i%2 == 0), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	wg.Wait()
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := accessoryFile(t, "")

	var count atomic.Int32
	watcher := NewConfigWatcher(path, LoadAccessories, newTestLogger(),
		WithDebounce[Accessories](50*time.Millisecond),
	)
	watcher.OnReload(func(Accessories) {
		count.Add(1)
	})
	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := watcher.Stop(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("anc = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}
