package actors

import (
	stdctx "context"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/feed"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

type ThreadStatus string

const (
	ThreadCollapsed ThreadStatus = "collapsed"
	ThreadLoading   ThreadStatus = "loading"
	ThreadLoaded    ThreadStatus = "loaded"
)

// ThreadState is an immutable snapshot of one post's thread.
type ThreadState struct {
	PostID          string
	Status          ThreadStatus
	Comments        []models.Comment
	ComposerVisible bool
	SignInPrompt    bool
	Draft           models.ReplyDraft
	CanSubmit       bool
	Submitting      bool
	LastError       error
}

// Message types for ThreadActor
type (
	RefreshThreadMsg struct{}

	// ToggleComposerMsg is the user opening or closing the reply box.
	ToggleComposerMsg struct {
		Session *models.Identity
	}

	// SessionChangedMsg reports the authentication collaborator's current
	// identity; nil means signed out.
	SessionChangedMsg struct {
		Session *models.Identity
	}

	SetReplyDraftMsg struct {
		Text string
	}

	SubmitReplyMsg struct {
		Author *models.Identity
	}

	GetThreadStateMsg struct{}

	threadLoadedMsg struct {
		seq      uint64
		comments []models.Comment
		err      error
	}

	replySubmittedMsg struct {
		draft   models.ReplyDraft
		comment *models.Comment
		err     error
		replyTo *actor.PID
	}
)

// ThreadActor owns one post's comment list and reply composer. It loads
// eagerly when started and is discarded when its post leaves the feed.
type ThreadActor struct {
	postID   string
	loader   feed.CommentThreadLoader
	replies  ReplySubmitter
	renderer Renderer
	limiter  *semaphore.Weighted

	status          ThreadStatus
	comments        []models.Comment
	hasLoaded       bool
	composerVisible bool
	signInPrompt    bool
	draft           models.ReplyDraft
	submitting      bool
	lastErr         error

	loadSeq  uint64
	lifetime stdctx.Context
	cancel   stdctx.CancelFunc
	torn     bool
}

func NewThreadActor(postID string, deps Deps) actor.Actor {
	deps = deps.withDefaults()
	return &ThreadActor{
		postID:   postID,
		loader:   deps.ThreadLoader,
		replies:  deps.Replies,
		renderer: deps.Renderer,
		limiter:  deps.ThreadLimit,
		status:   ThreadCollapsed,
	}
}

func (a *ThreadActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.lifetime, a.cancel = stdctx.WithCancel(stdctx.Background())
		log.Debugf("ThreadActor for post %s started with PID: %v", a.postID, context.Self())
		a.startLoad(context)

	case *actor.Stopping:
		a.torn = true
		if a.cancel != nil {
			a.cancel()
		}

	case *actor.Stopped:
		log.Debugf("ThreadActor for post %s stopped", a.postID)

	case *RefreshThreadMsg:
		a.startLoad(context)
		respond(context, a.snapshot())

	case *threadLoadedMsg:
		a.handleLoaded(msg)

	case *ToggleComposerMsg:
		if msg.Session == nil {
			a.signInPrompt = true
			a.composerVisible = false
		} else {
			a.signInPrompt = false
			a.composerVisible = !a.composerVisible
		}
		a.render()
		respond(context, a.snapshot())

	case *SessionChangedMsg:
		if msg.Session == nil {
			a.composerVisible = false
		} else {
			a.signInPrompt = false
		}
		a.render()
		respond(context, a.snapshot())

	case *SetReplyDraftMsg:
		a.draft.Text = msg.Text
		a.render()
		respond(context, a.snapshot())

	case *SubmitReplyMsg:
		a.handleSubmitReply(context, msg)

	case *replySubmittedMsg:
		a.handleReplySubmitted(context, msg)

	case *GetThreadStateMsg:
		respond(context, a.snapshot())

	default:
		log.Debugf("ThreadActor: Unknown message type %T", msg)
	}
}

func (a *ThreadActor) startLoad(context actor.Context) {
	a.loadSeq++
	seq := a.loadSeq
	a.status = ThreadLoading
	a.render()

	root := context.ActorSystem().Root
	self := context.Self()
	lifetime := a.lifetime
	loader := a.loader
	limiter := a.limiter
	postID := a.postID

	go func() {
		if limiter != nil {
			if err := limiter.Acquire(lifetime, 1); err != nil {
				return
			}
			defer limiter.Release(1)
		}

		comments, err := loader.Load(lifetime, postID)
		if lifetime.Err() != nil {
			// Torn down while loading; nobody is left to apply the result.
			return
		}
		root.Send(self, &threadLoadedMsg{seq: seq, comments: comments, err: err})
	}()
}

func (a *ThreadActor) handleLoaded(msg *threadLoadedMsg) {
	if a.torn || msg.seq != a.loadSeq {
		return
	}

	if msg.err != nil {
		log.WithField("postId", a.postID).Warnf("Comment thread refresh failed: %v", msg.err)
		a.lastErr = msg.err
		if a.hasLoaded {
			a.status = ThreadLoaded
		} else {
			a.status = ThreadCollapsed
		}
		a.render()
		return
	}

	a.comments = msg.comments
	a.hasLoaded = true
	a.lastErr = nil
	a.status = ThreadLoaded
	a.render()
}

func (a *ThreadActor) handleSubmitReply(context actor.Context, msg *SubmitReplyMsg) {
	if msg.Author == nil {
		a.signInPrompt = true
		a.composerVisible = false
		a.render()
		respond(context, utils.NewUnauthenticatedError("reply"))
		return
	}
	if a.submitting {
		respond(context, utils.NewAppError(utils.ErrInvalidInput, "a reply is already being posted", nil))
		return
	}
	if !compose.CanSubmit(a.draft.Text) {
		respond(context, utils.NewValidationFailure("reply must not be blank"))
		return
	}

	a.submitting = true
	a.render()

	root := context.ActorSystem().Root
	self := context.Self()
	replyTo := context.Sender()
	draft := a.draft
	author := *msg.Author
	replies := a.replies
	postID := a.postID

	go func() {
		// Writes are not tied to the thread's lifetime: a reply already
		// sent is not abandoned because the view went away.
		comment, err := replies.SubmitReply(stdctx.Background(), draft, postID, &author)
		root.Send(self, &replySubmittedMsg{draft: draft, comment: comment, err: err, replyTo: replyTo})
	}()
}

func (a *ThreadActor) handleReplySubmitted(context actor.Context, msg *replySubmittedMsg) {
	a.submitting = false
	if a.torn {
		return
	}

	if msg.err != nil {
		a.lastErr = msg.err
		a.render()
		reply(context, msg.replyTo, toAppError(msg.err, utils.ErrWriteFailure, "Failed to post reply"))
		return
	}

	if a.draft == msg.draft {
		a.draft = models.ReplyDraft{}
	}
	a.composerVisible = false
	a.lastErr = nil
	reply(context, msg.replyTo, msg.comment)

	a.startLoad(context)
}

func (a *ThreadActor) snapshot() ThreadState {
	comments := make([]models.Comment, len(a.comments))
	copy(comments, a.comments)
	return ThreadState{
		PostID:          a.postID,
		Status:          a.status,
		Comments:        comments,
		ComposerVisible: a.composerVisible,
		SignInPrompt:    a.signInPrompt,
		Draft:           a.draft,
		CanSubmit:       compose.CanSubmit(a.draft.Text) && !a.submitting,
		Submitting:      a.submitting,
		LastError:       a.lastErr,
	}
}

func (a *ThreadActor) render() {
	if a.torn {
		return
	}
	a.renderer.RenderThread(a.snapshot())
}
