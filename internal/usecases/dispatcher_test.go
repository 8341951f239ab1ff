package usecases

import (
	"errors"
	"sync"
	"testing"
	"time"

	"hilalbot/internal/entities"
)

type fakeQueue struct {
	mu     sync.Mutex
	due    []entities.Post
	sent   []int
	failed []int
}

func (q *fakeQueue) FindDueBefore(now time.Time) ([]entities.Post, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.due
	q.due = nil
	return out, nil
}

func (q *fakeQueue) MarkSent(id int, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(id int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, id)
	return nil
}

type fakeSender struct {
	channelErr error
	channels   []string
	broadcasts []string
	sentCount  int
	block      chan struct{}
}

func (s *fakeSender) SendPostToChannel(post *entities.Post) error {
	if s.block != nil {
		<-s.block
	}
	s.channels = append(s.channels, post.ChannelID)
	return s.channelErr
}

func (s *fakeSender) BroadcastToSubscribers(post *entities.Post, variant string) (int, int) {
	s.broadcasts = append(s.broadcasts, variant)
	return s.sentCount, 0
}

func TestDispatcherSendsDueChannelPost(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	queue := &fakeQueue{due: []entities.Post{{
		ID:          7,
		Content:     "hello",
		Type:        entities.PostTypeText,
		ChannelID:   "-100123",
		Status:      entities.PostStatusScheduled,
		ScheduledAt: &past,
	}}}
	sender := &fakeSender{}

	d := NewDispatcher(queue, sender, "* * * * *")
	d.Tick()

	if len(sender.channels) != 1 || sender.channels[0] != "-100123" {
		t.Fatalf("channel sends = %v", sender.channels)
	}
	if len(sender.broadcasts) != 0 {
		t.Errorf("unexpected broadcasts: %v", sender.broadcasts)
	}
	if len(queue.sent) != 1 || queue.sent[0] != 7 {
		t.Errorf("sent marks = %v, want [7]", queue.sent)
	}
	if len(queue.failed) != 0 {
		t.Errorf("failed marks = %v, want none", queue.failed)
	}
}

func TestDispatcherBroadcastsPostWithoutChannel(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	queue := &fakeQueue{due: []entities.Post{{
		ID:          3,
		Content:     "to everyone",
		Type:        entities.PostTypeText,
		Status:      entities.PostStatusScheduled,
		ScheduledAt: &past,
	}}}
	sender := &fakeSender{sentCount: 5}

	d := NewDispatcher(queue, sender, "* * * * *")
	d.Tick()

	if len(sender.broadcasts) != 2 {
		t.Fatalf("broadcasts = %v, want both variants", sender.broadcasts)
	}
	if len(queue.sent) != 1 || queue.sent[0] != 3 {
		t.Errorf("sent marks = %v, want [3]", queue.sent)
	}
}

func TestDispatcherMarksFailedOnce(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	queue := &fakeQueue{due: []entities.Post{{
		ID:          9,
		ChannelID:   "-100456",
		Status:      entities.PostStatusScheduled,
		ScheduledAt: &past,
	}}}
	sender := &fakeSender{channelErr: errors.New("chat not found")}

	d := NewDispatcher(queue, sender, "* * * * *")
	d.Tick()

	if len(queue.failed) != 1 || queue.failed[0] != 9 {
		t.Errorf("failed marks = %v, want [9]", queue.failed)
	}
	if len(queue.sent) != 0 {
		t.Errorf("sent marks = %v, want none", queue.sent)
	}
}

func TestDispatcherSkipsOverlappingTick(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	queue := &fakeQueue{due: []entities.Post{{
		ID:          1,
		ChannelID:   "-100789",
		Status:      entities.PostStatusScheduled,
		ScheduledAt: &past,
	}}}
	sender := &fakeSender{block: make(chan struct{})}

	d := NewDispatcher(queue, sender, "* * * * *")

	done := make(chan struct{})
	go func() {
		d.Tick()
		close(done)
	}()

	// Wait for the first tick to take the run flag.
	for !d.running.Load() {
		time.Sleep(time.Millisecond)
	}

	// A second tick while the first is mid-send must do nothing.
	d.Tick()
	queue.mu.Lock()
	alreadyMarked := len(queue.sent) + len(queue.failed)
	queue.mu.Unlock()
	if alreadyMarked != 0 {
		t.Fatal("overlapping tick touched post state")
	}

	close(sender.block)
	<-done

	if len(queue.sent) != 1 {
		t.Errorf("sent marks = %v, want exactly one", queue.sent)
	}
}
