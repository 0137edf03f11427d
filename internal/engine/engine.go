// Package engine is the entry point to the feed view models. It owns the
// feed actor and turns actor requests into plain method calls.
package engine

import (
	"context"
	"time"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/config"
	"twitter-clone/internal/engine/actors"
	"twitter-clone/internal/feed"
	"twitter-clone/internal/models"
	"twitter-clone/internal/store"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const pollInterval = 20 * time.Millisecond

// Engine coordinates communication with the feed actor and its threads
type Engine struct {
	context   *actor.RootContext
	feedActor *actor.PID
	timeout   time.Duration
}

func NewEngine(system *actor.ActorSystem, deps actors.Deps, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = config.DefaultFeedConfig().ActorTimeout
	}

	feedProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewFeedActor(deps)
	})

	return &Engine{
		context:   system.Root,
		feedActor: system.Root.Spawn(feedProps),
		timeout:   timeout,
	}
}

// NewStoreEngine wires the engine to the remote content store described by cfg.
func NewStoreEngine(system *actor.ActorSystem, cfg *config.ClientConfig, metrics *utils.MetricsCollector, notifier compose.Notifier, renderer actors.Renderer) *Engine {
	client := store.NewClient(cfg.Store, metrics)
	controller := compose.NewController(client, notifier)

	deps := actors.Deps{
		FeedLoader:   feed.NewStoreFeedLoader(client),
		ThreadLoader: feed.NewStoreThreadLoader(client),
		Posts:        controller,
		Replies:      controller,
		Notifier:     notifier,
		Renderer:     renderer,
	}
	if cfg.Feed.ThreadLoadLimit > 0 {
		deps.ThreadLimit = semaphore.NewWeighted(int64(cfg.Feed.ThreadLoadLimit))
	}

	log.WithFields(log.Fields{
		"store":   cfg.Store.URL,
		"dataset": cfg.Store.Dataset,
	}).Info("Feed engine connected to content store")

	return NewEngine(system, deps, cfg.Feed.ActorTimeout)
}

// GetFeedActor returns the PID of the feed actor
func (e *Engine) GetFeedActor() *actor.PID {
	return e.feedActor
}

// Refresh starts a feed reload and returns the state it entered.
func (e *Engine) Refresh() (actors.FeedState, error) {
	result, err := e.ask("FeedActor", e.feedActor, &actors.RefreshFeedMsg{})
	if err != nil {
		return actors.FeedState{}, err
	}
	return result.(actors.FeedState), nil
}

func (e *Engine) State() (actors.FeedState, error) {
	result, err := e.ask("FeedActor", e.feedActor, &actors.GetFeedStateMsg{})
	if err != nil {
		return actors.FeedState{}, err
	}
	return result.(actors.FeedState), nil
}

func (e *Engine) SetDraft(text, image string) (actors.FeedState, error) {
	result, err := e.ask("FeedActor", e.feedActor, &actors.SetPostDraftMsg{Text: text, Image: image})
	if err != nil {
		return actors.FeedState{}, err
	}
	return result.(actors.FeedState), nil
}

// SubmitPost posts the current draft and blocks until the write completes.
// The feed reloads on success.
func (e *Engine) SubmitPost(author *models.Identity) (*models.Post, error) {
	result, err := e.ask("FeedActor", e.feedActor, &actors.SubmitPostMsg{Author: author})
	if err != nil {
		return nil, err
	}
	return result.(*models.Post), nil
}

// SessionChanged tells every mounted thread about the current identity.
func (e *Engine) SessionChanged(session *models.Identity) {
	e.context.Send(e.feedActor, &actors.SessionChangedMsg{Session: session})
}

// Thread returns the thread actor mounted for postID.
func (e *Engine) Thread(postID string) (*actor.PID, error) {
	result, err := e.ask("FeedActor", e.feedActor, &actors.GetThreadMsg{PostID: postID})
	if err != nil {
		return nil, err
	}
	return result.(*actor.PID), nil
}

func (e *Engine) ThreadState(postID string) (actors.ThreadState, error) {
	return e.askThread(postID, &actors.GetThreadStateMsg{})
}

func (e *Engine) ToggleComposer(postID string, session *models.Identity) (actors.ThreadState, error) {
	return e.askThread(postID, &actors.ToggleComposerMsg{Session: session})
}

func (e *Engine) SetReplyDraft(postID, text string) (actors.ThreadState, error) {
	return e.askThread(postID, &actors.SetReplyDraftMsg{Text: text})
}

// SubmitReply posts postID's reply draft as author. A nil author is
// refused and the thread shows a sign-in prompt instead.
func (e *Engine) SubmitReply(postID string, author *models.Identity) (*models.Comment, error) {
	pid, err := e.Thread(postID)
	if err != nil {
		return nil, err
	}
	result, err := e.ask("ThreadActor", pid, &actors.SubmitReplyMsg{Author: author})
	if err != nil {
		return nil, err
	}
	return result.(*models.Comment), nil
}

// WaitFeed polls until the feed is neither loading nor submitting.
func (e *Engine) WaitFeed(ctx context.Context) (actors.FeedState, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		state, err := e.State()
		if err != nil {
			return state, err
		}
		if state.Status != actors.FeedLoading && !state.Submitting {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitThread polls until postID's thread has settled.
func (e *Engine) WaitThread(ctx context.Context, postID string) (actors.ThreadState, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		state, err := e.ThreadState(postID)
		if err != nil {
			return state, err
		}
		if state.Status != actors.ThreadLoading && !state.Submitting {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Shutdown stops the feed actor and every thread under it.
func (e *Engine) Shutdown() error {
	return e.context.StopFuture(e.feedActor).Wait()
}

func (e *Engine) askThread(postID string, msg interface{}) (actors.ThreadState, error) {
	pid, err := e.Thread(postID)
	if err != nil {
		return actors.ThreadState{}, err
	}
	result, err := e.ask("ThreadActor", pid, msg)
	if err != nil {
		return actors.ThreadState{}, err
	}
	return result.(actors.ThreadState), nil
}

func (e *Engine) ask(name string, pid *actor.PID, msg interface{}) (interface{}, error) {
	result, err := e.context.RequestFuture(pid, msg, e.timeout).Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(name, err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}
