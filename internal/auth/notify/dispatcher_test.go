package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	got   []notify.Notification
	gate  chan struct{}
	fail  bool
	calls int
}

func (s *recordingSink) Send(_ context.Context, n notify.Notification) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return errors.New("broker down")
	}
	s.got = append(s.got, n)
	return nil
}

func (s *recordingSink) kinds() []notify.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Kind
	for _, n := range s.got {
		out = append(out, n.Kind)
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDispatcher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	d := notify.NewDispatcher(sink, notify.DispatcherConfig{BufferSize: 8, Logger: quietLogger()})

	d.Notify(context.Background(), notify.Notification{Kind: notify.KindEmailVerification})
	d.Notify(context.Background(), notify.Notification{Kind: notify.KindPasswordReset})
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, []notify.Kind{notify.KindEmailVerification, notify.KindPasswordReset}, sink.kinds())

	// closed dispatchers drop instead of panicking
	d.Notify(context.Background(), notify.Notification{Kind: notify.KindPasswordChanged})
	require.Equal(t, uint64(1), d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	d := notify.NewDispatcher(sink, notify.DispatcherConfig{BufferSize: 1, Logger: quietLogger()})

	done := make(chan struct{})
	go func() {
		for range 5 {
			d.Notify(context.Background(), notify.Notification{Kind: notify.KindTwoFactorEnabled})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sink.gate)
	require.NoError(t, d.Close(context.Background()))
	require.GreaterOrEqual(t, d.Dropped(), uint64(3))
	require.Equal(t, 5, len(sink.kinds())+int(d.Dropped()))
}

func TestDispatcher_SinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := notify.NewDispatcher(sink, notify.DispatcherConfig{Logger: quietLogger()})
	d.Notify(context.Background(), notify.Notification{Kind: notify.KindPasswordReset})
	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, 1, sink.calls)
	require.Empty(t, sink.kinds())
}

func TestLogSink_HidesLinks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := notify.Notification{Kind: notify.KindPasswordReset, UserID: "u1", Link: "https://portal/reset?token=secret"}
	require.NoError(t, notify.LogSink{Logger: logger}.Send(context.Background(), n))
	require.NotContains(t, buf.String(), "secret")

	buf.Reset()
	require.NoError(t, notify.LogSink{Logger: logger, IncludeLinks: true}.Send(context.Background(), n))
	require.Contains(t, buf.String(), "secret")
}
