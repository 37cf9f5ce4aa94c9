package browser

import (
	"context"
	"errors"
	"testing"
)

// stubManager replaces Chrome with connections that carry no browser.
func stubManager(openErrs ...error) (m *Manager, dials *int) {
	m = NewManager(Config{})
	dials = new(int)
	m.dial = func(ctx context.Context) (*connection, error) {
		*dials++
		return &connection{}, nil
	}
	m.open = func(c *connection) (*Engine, error) {
		if len(openErrs) > 0 {
			err := openErrs[0]
			openErrs = openErrs[1:]
			if err != nil {
				return nil, err
			}
		}
		return &Engine{}, nil
	}
	return m, dials
}

func TestNewEngineRecyclesAfterTabFailure(t *testing.T) {
	m, dials := stubManager(errors.New("websocket: close 1006"))

	if _, err := m.NewEngine(context.Background()); err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if *dials != 2 {
		t.Fatalf("dials = %d, want 2 (stale connection replaced)", *dials)
	}

	if _, err := m.NewEngine(context.Background()); err != nil {
		t.Fatalf("second NewEngine() error = %v", err)
	}
	if *dials != 2 {
		t.Fatalf("dials = %d, want healthy connection reused", *dials)
	}
}

func TestNewEngineRetriesDialFailure(t *testing.T) {
	m, _ := stubManager()
	attempts := 0
	m.dial = func(ctx context.Context) (*connection, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("browser: launch: exec failed")
		}
		return &connection{}, nil
	}

	if _, err := m.NewEngine(context.Background()); err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("dial attempts = %d, want 2", attempts)
	}
}

func TestNewEngineGivesUpAfterOneRetry(t *testing.T) {
	boom := errors.New("target closed")
	m, dials := stubManager(boom, boom, boom)

	if _, err := m.NewEngine(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("NewEngine() error = %v, want %v", err, boom)
	}
	if *dials != 2 {
		t.Fatalf("dials = %d, want 2", *dials)
	}
}

func TestNewEngineAfterClose(t *testing.T) {
	m, dials := stubManager()
	if err := m.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, err := m.NewEngine(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("NewEngine() error = %v, want ErrClosed", err)
	}
	if *dials != 0 {
		t.Fatalf("dials = %d after close", *dials)
	}
}
