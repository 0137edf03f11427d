package actors

import (
	stdctx "context"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type FeedStatus string

const (
	FeedEmpty   FeedStatus = "empty"
	FeedLoading FeedStatus = "loading"
	FeedLoaded  FeedStatus = "loaded"
)

// FeedState is an immutable snapshot of the feed view.
type FeedState struct {
	Status     FeedStatus
	Posts      []models.Post
	Draft      models.PostDraft
	CanSubmit  bool
	Submitting bool
	LastError  error
}

// Message types for FeedActor
type (
	RefreshFeedMsg struct{}

	SetPostDraftMsg struct {
		Text  string
		Image string
	}

	// SubmitPostMsg posts the current draft. A nil Author posts as the
	// unknown user.
	SubmitPostMsg struct {
		Author *models.Identity
	}

	GetFeedStateMsg struct{}

	// GetThreadMsg resolves the thread actor mounted for a post.
	GetThreadMsg struct {
		PostID string
	}

	feedLoadedMsg struct {
		seq   uint64
		posts []models.Post
		err   error
	}

	postSubmittedMsg struct {
		draft   models.PostDraft
		post    *models.Post
		err     error
		replyTo *actor.PID
	}
)

// FeedActor owns the post list and the post composer, and mounts one
// ThreadActor per post currently in the feed.
type FeedActor struct {
	deps Deps

	status     FeedStatus
	posts      []models.Post
	hasLoaded  bool
	draft      models.PostDraft
	submitting bool
	lastErr    error
	threads    map[string]*actor.PID

	loadSeq  uint64
	lifetime stdctx.Context
	cancel   stdctx.CancelFunc
	torn     bool
}

func NewFeedActor(deps Deps) actor.Actor {
	return &FeedActor{
		deps:    deps.withDefaults(),
		status:  FeedEmpty,
		threads: make(map[string]*actor.PID),
	}
}

func (a *FeedActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.lifetime, a.cancel = stdctx.WithCancel(stdctx.Background())
		log.Printf("FeedActor started with PID: %v", context.Self())

	case *actor.Stopping:
		log.Printf("FeedActor stopping, tearing down %d threads", len(a.threads))
		a.torn = true
		if a.cancel != nil {
			a.cancel()
		}

	case *actor.Stopped:
		log.Printf("FeedActor stopped")

	case *RefreshFeedMsg:
		a.startLoad(context)
		respond(context, a.snapshot())

	case *feedLoadedMsg:
		a.handleLoaded(context, msg)

	case *SetPostDraftMsg:
		a.draft = models.PostDraft{Text: msg.Text, Image: msg.Image}
		a.render()
		respond(context, a.snapshot())

	case *SubmitPostMsg:
		a.handleSubmitPost(context, msg)

	case *postSubmittedMsg:
		a.handlePostSubmitted(context, msg)

	case *SessionChangedMsg:
		for _, pid := range a.threads {
			context.Send(pid, msg)
		}

	case *GetFeedStateMsg:
		respond(context, a.snapshot())

	case *GetThreadMsg:
		if pid, ok := a.threads[msg.PostID]; ok {
			respond(context, pid)
			return
		}
		respond(context, utils.NewAppError(utils.ErrNotFound, "no thread mounted for post "+msg.PostID, nil))

	default:
		log.Debugf("FeedActor: Unknown message type %T", msg)
	}
}

func (a *FeedActor) startLoad(context actor.Context) {
	a.loadSeq++
	seq := a.loadSeq
	a.status = FeedLoading
	a.render()

	root := context.ActorSystem().Root
	self := context.Self()
	lifetime := a.lifetime
	loader := a.deps.FeedLoader

	go func() {
		posts, err := loader.Load(lifetime)
		if lifetime.Err() != nil {
			return
		}
		root.Send(self, &feedLoadedMsg{seq: seq, posts: posts, err: err})
	}()
}

func (a *FeedActor) handleLoaded(context actor.Context, msg *feedLoadedMsg) {
	if a.torn || msg.seq != a.loadSeq {
		return
	}

	if msg.err != nil {
		log.Warnf("Feed refresh failed: %v", msg.err)
		a.lastErr = msg.err
		if a.hasLoaded {
			a.status = FeedLoaded
		} else {
			a.status = FeedEmpty
		}
		a.deps.Notifier.Notify(compose.Toast{
			ID:      uuid.New().String(),
			Status:  compose.ToastFailure,
			Message: "Could not load tweets",
		})
		a.render()
		return
	}

	a.posts = msg.posts
	a.hasLoaded = true
	a.lastErr = nil
	a.status = FeedLoaded
	a.syncThreads(context)
	a.render()
}

// syncThreads mounts a thread for every post in the feed and tears down
// threads whose post is gone.
func (a *FeedActor) syncThreads(context actor.Context) {
	present := make(map[string]bool, len(a.posts))
	for _, post := range a.posts {
		present[post.ID] = true
	}

	for postID, pid := range a.threads {
		if !present[postID] {
			context.Stop(pid)
			delete(a.threads, postID)
		}
	}

	for _, post := range a.posts {
		if _, ok := a.threads[post.ID]; ok || post.ID == "" {
			continue
		}
		postID := post.ID
		props := actor.PropsFromProducer(func() actor.Actor {
			return NewThreadActor(postID, a.deps)
		})
		a.threads[postID] = context.Spawn(props)
	}
}

func (a *FeedActor) handleSubmitPost(context actor.Context, msg *SubmitPostMsg) {
	if a.submitting {
		respond(context, utils.NewAppError(utils.ErrInvalidInput, "a tweet is already being posted", nil))
		return
	}
	if !compose.CanSubmit(a.draft.Text) {
		respond(context, utils.NewValidationFailure("tweet must not be blank"))
		return
	}

	a.submitting = true
	a.render()

	root := context.ActorSystem().Root
	self := context.Self()
	replyTo := context.Sender()
	draft := a.draft
	author := msg.Author
	posts := a.deps.Posts

	go func() {
		post, err := posts.SubmitPost(stdctx.Background(), draft, author)
		root.Send(self, &postSubmittedMsg{draft: draft, post: post, err: err, replyTo: replyTo})
	}()
}

func (a *FeedActor) handlePostSubmitted(context actor.Context, msg *postSubmittedMsg) {
	a.submitting = false
	if a.torn {
		return
	}

	if msg.err != nil {
		a.lastErr = msg.err
		a.render()
		reply(context, msg.replyTo, toAppError(msg.err, utils.ErrWriteFailure, "Failed to post tweet"))
		return
	}

	if a.draft == msg.draft {
		a.draft = models.PostDraft{}
	}
	a.lastErr = nil
	reply(context, msg.replyTo, msg.post)

	a.startLoad(context)
}

func (a *FeedActor) snapshot() FeedState {
	posts := make([]models.Post, len(a.posts))
	copy(posts, a.posts)
	return FeedState{
		Status:     a.status,
		Posts:      posts,
		Draft:      a.draft,
		CanSubmit:  compose.CanSubmit(a.draft.Text) && !a.submitting,
		Submitting: a.submitting,
		LastError:  a.lastErr,
	}
}

func (a *FeedActor) render() {
	if a.torn {
		return
	}
	a.deps.Renderer.RenderFeed(a.snapshot())
}
