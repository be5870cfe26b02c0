package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pigeon/internal/config"
)

type fakeEmitter struct {
	events       []string
	payloads     []any
	disconnected bool
}

func (f *fakeEmitter) emit(event string, data any) {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, data)
}

func (f *fakeEmitter) disconnect() { f.disconnected = true }

func TestNew(t *testing.T) {
	n, err := New(nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)

	_, err = New(&config.Notify{URL: "localhost"})
	assert.ErrorContains(t, err, "scheme and host are required")

	n, err = New(&config.Notify{URL: "http://localhost:3000"})
	require.NoError(t, err)
	s := n.(*SocketIO)
	assert.Equal(t, "reload", s.cfg.Event)
	assert.Equal(t, "/", s.cfg.Namespace)
}

func TestSocketIO_NotifyReusesConnection(t *testing.T) {
	n, err := New(&config.Notify{URL: "http://localhost:3000", Event: "rebuilt"})
	require.NoError(t, err)
	s := n.(*SocketIO)

	fake := &fakeEmitter{}
	dials := 0
	s.dial = func(ctx context.Context, cfg *config.Notify) (emitter, error) {
		dials++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return fake, nil
	}

	ev := Event{RunID: "r1", Articles: 2, Duration: 1500 * time.Millisecond, Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Notify(context.Background(), ev))
	require.NoError(t, s.Notify(context.Background(), ev))

	assert.Equal(t, 1, dials)
	assert.Equal(t, []string{"rebuilt", "rebuilt"}, fake.events)
	assert.Equal(t, map[string]any{
		"run_id":      "r1",
		"articles":    2,
		"duration_ms": int64(1500),
		"time":        "2024-05-01T00:00:00Z",
	}, fake.payloads[0])

	require.NoError(t, s.Close())
	assert.True(t, fake.disconnected)
}

func TestSocketIO_DialFailure(t *testing.T) {
	n, err := New(&config.Notify{URL: "http://localhost:3000"})
	require.NoError(t, err)
	s := n.(*SocketIO)

	boom := errors.New("refused")
	s.dial = func(context.Context, *config.Notify) (emitter, error) { return nil, boom }

	err = s.Notify(context.Background(), Event{})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, s.Close())
}
