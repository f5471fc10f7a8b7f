package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type listenerFunc func(ctx context.Context)

func (f listenerFunc) Start(ctx context.Context) { f(ctx) }

func TestBot_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, nil, nil)
	b := NewBot(slog.New(slog.NewTextHandler(io.Discard, nil)), listenerFunc(func(ctx context.Context) {
		<-ctx.Done()
	}), s)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestBot_RunFailsWhenListenerExits(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, nil, nil)
	b := NewBot(slog.New(slog.NewTextHandler(io.Discard, nil)), listenerFunc(func(context.Context) {}), s)

	if err := b.Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want an error for an early listener exit")
	}
}
