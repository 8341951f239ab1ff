package usecases

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"hilalbot/internal/entities"
	"hilalbot/internal/infrastructure"
)

// PostQueue is the slice of the post repository the dispatcher needs.
type PostQueue interface {
	FindDueBefore(now time.Time) ([]entities.Post, error)
	MarkSent(id int, messageID string) error
	MarkFailed(id int) error
}

// PostSender delivers a post to its targets.
type PostSender interface {
	SendPostToChannel(post *entities.Post) error
	BroadcastToSubscribers(post *entities.Post, variant string) (sent, failed int)
}

// Dispatcher fires scheduled posts. A cron tick scans for due posts and
// sends each one exactly once; a tick that finds the previous run still
// going skips instead of overlapping it.
type Dispatcher struct {
	posts   PostQueue
	bots    PostSender
	cron    *cron.Cron
	spec    string
	running atomic.Bool
	now     func() time.Time
}

func NewDispatcher(posts PostQueue, bots PostSender, spec string) *Dispatcher {
	return &Dispatcher{
		posts: posts,
		bots:  bots,
		cron:  cron.New(),
		spec:  spec,
		now:   time.Now,
	}
}

func (d *Dispatcher) Start() error {
	if _, err := d.cron.AddFunc(d.spec, d.Tick); err != nil {
		return fmt.Errorf("dispatcher cron spec %q: %w", d.spec, err)
	}
	d.cron.Start()
	infrastructure.Log.Infof("[Dispatcher] started, spec %q", d.spec)
	return nil
}

func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

// Tick scans for due posts. Exported so tests and the admin "run now"
// endpoint can trigger a scan directly.
func (d *Dispatcher) Tick() {
	if !d.running.CompareAndSwap(false, true) {
		infrastructure.Log.Debug("[Dispatcher] previous run still in progress, skipping tick")
		return
	}
	defer d.running.Store(false)

	due, err := d.posts.FindDueBefore(d.now())
	if err != nil {
		infrastructure.Log.Errorf("[Dispatcher] scan: %v", err)
		return
	}

	for _, post := range due {
		d.dispatch(&post)
	}
}

// dispatch delivers one due post and writes its terminal status exactly
// once. A post with a channel goes to that channel; without one it
// broadcasts to subscribers of both variants (or the flagged targets).
func (d *Dispatcher) dispatch(post *entities.Post) {
	infrastructure.Log.Infof("[Dispatcher] dispatching post %d (%s)", post.ID, post.Type)

	var failed bool
	if post.ChannelID != "" {
		if err := d.bots.SendPostToChannel(post); err != nil {
			infrastructure.Log.Errorf("[Dispatcher] post %d to channel %s: %v", post.ID, post.ChannelID, err)
			failed = true
		}
	}

	if post.BroadcastToUsers || post.ChannelID == "" {
		sentTR, _ := d.bots.BroadcastToSubscribers(post, entities.BotTurkish)
		sentKO, _ := d.bots.BroadcastToSubscribers(post, entities.BotKorean)
		if post.ChannelID == "" && sentTR+sentKO == 0 {
			failed = true
		}
	}

	if failed {
		if err := d.posts.MarkFailed(post.ID); err != nil {
			infrastructure.Log.Errorf("[Dispatcher] mark failed %d: %v", post.ID, err)
		}
		return
	}
	if err := d.posts.MarkSent(post.ID, ""); err != nil {
		infrastructure.Log.Errorf("[Dispatcher] mark sent %d: %v", post.ID, err)
	}
}
