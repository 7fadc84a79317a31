package server

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lawnchairsociety/hexcrawl/internal/config"
)

// op is one TryAcquire (acquire) or Release in a limiter script.
type op struct {
	acquire bool
	ip      string
	want    bool
}

func TestConnLimiter_Scripts(t *testing.T) {
	tests := []struct {
		name   string
		limits config.ConnectionsConfig
		script []op
	}{
		{
			name:   "per ip",
			limits: config.ConnectionsConfig{MaxPerIP: 2, MaxTotal: 100},
			script: []op{
				{true, "10.0.0.1", true},
				{true, "10.0.0.1", true},
				{true, "10.0.0.1", false},
				{true, "10.0.0.2", true},
				{false, "10.0.0.1", false},
				{true, "10.0.0.1", true},
			},
		},
		{
			name:   "total",
			limits: config.ConnectionsConfig{MaxPerIP: 10, MaxTotal: 3},
			script: []op{
				{true, "10.0.0.1", true},
				{true, "10.0.0.2", true},
				{true, "10.0.0.3", true},
				{true, "10.0.0.4", false},
				{false, "10.0.0.1", false},
				{true, "10.0.0.4", true},
			},
		},
		{
			name:   "release of an unknown ip frees nothing",
			limits: config.ConnectionsConfig{MaxPerIP: 1, MaxTotal: 1},
			script: []op{
				{true, "10.0.0.1", true},
				{false, "10.0.0.9", false},
				{true, "10.0.0.2", false},
				{false, "10.0.0.1", false},
				{true, "10.0.0.2", true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewConnLimiter(tt.limits)
			for i, step := range tt.script {
				if !step.acquire {
					l.Release(step.ip)
					continue
				}
				if got := l.TryAcquire(step.ip); got != step.want {
					t.Fatalf("step %d: TryAcquire(%s) = %v, want %v", i, step.ip, got, step.want)
				}
			}
		})
	}
}

func TestConnLimiter_Unlimited(t *testing.T) {
	l := NewConnLimiter(config.ConnectionsConfig{})
	for i := 0; i < 250; i++ {
		if !l.TryAcquire("10.0.0.1") {
			t.Fatalf("acquire %d rejected with no limits", i)
		}
	}
	if got := l.IPCount("10.0.0.1"); got != 250 {
		t.Errorf("IPCount = %d, want 250", got)
	}
}

func TestConnLimiter_StatsAndCounts(t *testing.T) {
	l := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 10, MaxTotal: 100})
	l.TryAcquire("10.0.0.1")
	l.TryAcquire("10.0.0.1")
	l.TryAcquire("10.0.0.2")

	if got := l.Stats(); got != (ConnStats{Total: 3, UniqueIPs: 2}) {
		t.Errorf("Stats = %+v", got)
	}
	if got := l.IPCount("10.0.0.1"); got != 2 {
		t.Errorf("IPCount(10.0.0.1) = %d, want 2", got)
	}
	if got := l.IPCount("10.0.0.3"); got != 0 {
		t.Errorf("IPCount(unknown) = %d, want 0", got)
	}

	l.Release("10.0.0.2")
	l.Release("10.0.0.2")
	if got := l.Stats(); got != (ConnStats{Total: 2, UniqueIPs: 1}) {
		t.Errorf("Stats after release = %+v", got)
	}
}

func TestConnLimiter_Concurrent(t *testing.T) {
	l := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 1000, MaxTotal: 50})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire("10.0.0.1") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 50 {
		t.Errorf("granted %d slots, want 50", granted)
	}
	if got := l.Stats().Total; got != 50 {
		t.Errorf("Stats().Total = %d, want 50", got)
	}
}

func TestExtractIP(t *testing.T) {
	tests := map[string]string{
		"192.168.1.1:12345": "192.168.1.1",
		"[::1]:12345":       "::1",
		"localhost:8080":    "localhost",
		"192.168.1.1":       "192.168.1.1",
	}
	for in, want := range tests {
		if got := extractIP(in); got != want {
			t.Errorf("extractIP(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name       string
		xff, xri   string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.50", "", "10.0.0.1:1", "203.0.113.50"},
		{"forwarded chain", "203.0.113.50, 70.41.3.18", "", "10.0.0.1:1", "203.0.113.50"},
		{"forwarded beats real ip", "203.0.113.50", "198.51.100.25", "10.0.0.1:1", "203.0.113.50"},
		{"empty first hop falls through", " , 70.41.3.18", "198.51.100.25", "10.0.0.1:1", "198.51.100.25"},
		{"real ip", "", "198.51.100.25", "10.0.0.1:1", "198.51.100.25"},
		{"peer", "", "", "192.168.1.100:54321", "192.168.1.100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getRealIP(req); got != tt.want {
				t.Errorf("getRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
