package actors

import (
	stdctx "context"
	"errors"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/feed"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"golang.org/x/sync/semaphore"
)

// PostSubmitter issues the write for a new post.
type PostSubmitter interface {
	SubmitPost(ctx stdctx.Context, draft models.PostDraft, author *models.Identity) (*models.Post, error)
}

// ReplySubmitter issues the write for a reply.
type ReplySubmitter interface {
	SubmitReply(ctx stdctx.Context, draft models.ReplyDraft, postID string, author *models.Identity) (*models.Comment, error)
}

// Renderer is the presentation collaborator. It is called from actor
// goroutines after every state change, feed and threads concurrently, so
// implementations must be safe for concurrent use.
type Renderer interface {
	RenderFeed(state FeedState)
	RenderThread(state ThreadState)
}

// NopRenderer discards every render.
type NopRenderer struct{}

func (NopRenderer) RenderFeed(FeedState)     {}
func (NopRenderer) RenderThread(ThreadState) {}

// Deps are the collaborators shared by the feed actor and its threads.
type Deps struct {
	FeedLoader   feed.FeedLoader
	ThreadLoader feed.CommentThreadLoader
	Posts        PostSubmitter
	Replies      ReplySubmitter
	Notifier     compose.Notifier
	Renderer     Renderer

	// ThreadLimit bounds concurrent thread loads across all posts. Nil
	// means every thread loads as soon as it is mounted.
	ThreadLimit *semaphore.Weighted
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = compose.LogNotifier{}
	}
	if d.Renderer == nil {
		d.Renderer = NopRenderer{}
	}
	return d
}

// toAppError normalizes err for an actor response.
func toAppError(err error, code string, message string) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.NewAppError(code, message, err)
}

// reply answers a deferred request. A nil PID means the message was sent
// fire-and-forget.
func reply(context actor.Context, to *actor.PID, result interface{}) {
	if to != nil {
		context.Send(to, result)
	}
}

func respond(context actor.Context, result interface{}) {
	if context.Sender() != nil {
		context.Respond(result)
	}
}
