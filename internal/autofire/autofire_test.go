package autofire

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"
	"wigglebot/internal/post"
	"wigglebot/pkg/jobmgr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type chatty struct {
	interval atomic.Int64
	calls    atomic.Int32
	channels chan string
	// stopAfter drops the interval to zero after that many autofires.
	stopAfter int32
}

func newChatty(interval time.Duration, stopAfter int32) *chatty {
	c := &chatty{channels: make(chan string, 10), stopAfter: stopAfter}
	c.interval.Store(int64(interval))
	return c
}

func (c *chatty) Callsign() string { return "_chatty" }

func (c *chatty) AutofireInterval() time.Duration {
	return time.Duration(c.interval.Load())
}

func (c *chatty) Autofire(ctx context.Context, channelID string) (string, error) {
	if c.calls.Add(1) >= c.stopAfter {
		c.interval.Store(0)
	}
	c.channels <- channelID
	return "unprompted thought", nil
}

func setup(t *testing.T) (*Scheduler, *memchat.Client, *fakeClock, *jobmgr.Manager) {
	t.Helper()
	client := memchat.New(chat.User{ID: "bot"})
	client.AddChannel(chat.Channel{ID: "c1", GuildID: "g"})

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	jobs := jobmgr.NewManager(context.Background(), nil)
	s := New(post.New(client, 0), jobs, clock.Now)
	s.sleep = func(ctx context.Context, d time.Duration) bool {
		if ctx.Err() != nil {
			return false
		}
		clock.Advance(d)
		return true
	}
	return s, client, clock, jobs
}

func TestLoopFiresAfterSilenceThenStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, client, _, jobs := setup(t)
	defer jobs.StopAll()

	h := newChatty(2*time.Minute, 2)
	s.Arm(h, "c1")

	for i := 0; i < 2; i++ {
		select {
		case ch := <-h.channels:
			assert.Equal(t, "c1", ch)
		case <-time.After(5 * time.Second):
			t.Fatal("autofire never ran")
		}
	}

	require.Eventually(t, func() bool { return !s.Running("_chatty") }, 5*time.Second, 10*time.Millisecond)
	posted := client.Posted()
	require.Len(t, posted, 2)
	assert.Equal(t, "unprompted thought", posted[0].Content)
	assert.Equal(t, "c1", posted[0].ChannelID)
	assert.Empty(t, posted[0].ReferenceID)
}

func TestArmBelowMinimumDoesNotStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _, _, jobs := setup(t)
	defer jobs.StopAll()

	s.Arm(newChatty(30*time.Second, 1), "c1")
	assert.False(t, s.Running("_chatty"))
}

func TestTouchResetsWatchedChannelsOnly(t *testing.T) {
	s, _, clock, _ := setup(t)

	h := newChatty(0, 1)
	s.Arm(h, "c1")
	_, armed := s.state("_chatty")

	clock.Advance(time.Minute)
	s.Touch("other")
	_, last := s.state("_chatty")
	assert.Equal(t, armed, last)

	s.Touch("c1")
	_, last = s.state("_chatty")
	assert.Equal(t, armed.Add(time.Minute), last)
}

func TestStopEndsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := memchat.New(chat.User{ID: "bot"})
	jobs := jobmgr.NewManager(context.Background(), nil)
	s := New(post.New(client, 0), jobs, nil)

	s.Arm(newChatty(time.Hour, 1), "c1")
	require.True(t, s.Running("_chatty"))

	s.Stop("_chatty")
	assert.False(t, s.Running("_chatty"))
	assert.Empty(t, client.Posted())
}
