package memory

import (
	"context"
	"errors"
	"testing"
)

const gib = 1 << 30

type fakeSource struct {
	stats *Stats
	err   error
	calls int
}

func (f *fakeSource) Read(ctx context.Context) (*Stats, error) {
	f.calls++
	return f.stats, f.err
}

func TestProviderStats(t *testing.T) {
	src := &fakeSource{stats: &Stats{Used: 3 * gib, Free: 5 * gib, Total: 8 * gib}}
	p := NewProvider(src, nil)

	got := p.Stats(context.Background())
	if got == nil {
		t.Fatal("Stats() = nil, want snapshot")
	}
	want := Stats{Used: 3 * gib, Free: 5 * gib, Total: 8 * gib}
	if *got != want {
		t.Fatalf("Stats() = %+v, want %+v", *got, want)
	}
}

func TestProviderStatsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"source error", &fakeSource{err: errors.New("host_statistics failed")}},
		{"error with partial stats", &fakeSource{stats: &Stats{Used: 1}, err: errors.New("partial")}},
		{"nil stats", &fakeSource{}},
		{"zero total", &fakeSource{stats: &Stats{Used: 10, Free: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewProvider(tt.src, nil).Stats(context.Background()); got != nil {
				t.Fatalf("Stats() = %+v, want nil", *got)
			}
		})
	}
}

func TestProviderRequeriesEveryCall(t *testing.T) {
	src := &fakeSource{stats: &Stats{Used: 1, Free: 1, Total: 2}}
	p := NewProvider(src, nil)

	for i := 0; i < 3; i++ {
		p.Stats(context.Background())
	}
	if src.calls != 3 {
		t.Fatalf("source called %d times, want 3", src.calls)
	}
}

func TestProviderSnapshotIsCopied(t *testing.T) {
	src := &fakeSource{stats: &Stats{Used: 1, Free: 1, Total: 2}}
	got := NewProvider(src, nil).Stats(context.Background())

	src.stats.Used = 99
	if got.Used != 1 {
		t.Fatalf("snapshot changed after source mutation: %+v", *got)
	}
}

func TestPlatformSource(t *testing.T) {
	s := NewProvider(NewSource(), nil).Stats(context.Background())
	if s == nil {
		t.Skip("memory statistics unavailable on this host")
	}
	if s.Used+s.Free > s.Total {
		t.Errorf("used %d + free %d exceeds total %d", s.Used, s.Free, s.Total)
	}
}
