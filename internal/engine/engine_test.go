package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/config"
	"twitter-clone/internal/database"
	"twitter-clone/internal/engine/actors"
	"twitter-clone/internal/handlers"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreEngine(t *testing.T) (*Engine, *compose.Recorder) {
	t.Helper()

	server := handlers.NewServer(database.NewMemoryStore(), nil, "dev", "")
	mux := http.NewServeMux()
	server.Routes(mux)
	httpServer := httptest.NewServer(mux)
	t.Cleanup(httpServer.Close)

	cfg := &config.ClientConfig{
		Store: &config.StoreConfig{URL: httpServer.URL, Dataset: "dev"},
		Feed:  config.DefaultFeedConfig(),
	}

	system := actor.NewActorSystem()
	t.Cleanup(func() { system.Shutdown() })

	toasts := &compose.Recorder{}
	e := NewStoreEngine(system, cfg, utils.NewMetricsCollector(), toasts, nil)
	t.Cleanup(func() { e.Shutdown() })
	return e, toasts
}

func settle(t *testing.T, e *Engine) actors.FeedState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := e.WaitFeed(ctx)
	require.NoError(t, err)
	return state
}

func settleThread(t *testing.T, e *Engine, postID string) actors.ThreadState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := e.WaitThread(ctx, postID)
	require.NoError(t, err)
	return state
}

func TestPostAppearsNewestAfterSubmit(t *testing.T) {
	e, toasts := newStoreEngine(t)

	_, err := e.Refresh()
	require.NoError(t, err)
	state := settle(t, e)
	assert.Equal(t, actors.FeedLoaded, state.Status)
	assert.Empty(t, state.Posts)

	_, err = e.SetDraft("older", "")
	require.NoError(t, err)
	_, err = e.SubmitPost(&models.Identity{Name: "Ann"})
	require.NoError(t, err)
	settle(t, e)

	_, err = e.SetDraft("hello", "")
	require.NoError(t, err)
	post, err := e.SubmitPost(nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)

	state = settle(t, e)
	require.Len(t, state.Posts, 2)
	assert.Equal(t, "hello", state.Posts[0].Text)
	assert.Equal(t, "Unknown User", state.Posts[0].Username)
	assert.Empty(t, state.Posts[0].Image)
	assert.Empty(t, state.Draft.Text)

	var succeeded int
	for _, toast := range toasts.Toasts() {
		if toast.Status == compose.ToastSuccess {
			succeeded++
		}
	}
	assert.Equal(t, 2, succeeded)
}

func TestReplyFlowThroughStore(t *testing.T) {
	e, _ := newStoreEngine(t)
	ann := &models.Identity{Name: "Ann", Image: "https://img.test/ann.png"}

	_, err := e.SetDraft("a post", "")
	require.NoError(t, err)
	_, err = e.SubmitPost(ann)
	require.NoError(t, err)

	state := settle(t, e)
	require.Len(t, state.Posts, 1)
	postID := state.Posts[0].ID

	thread := settleThread(t, e, postID)
	assert.Equal(t, actors.ThreadLoaded, thread.Status)
	assert.Empty(t, thread.Comments)

	_, err = e.SetReplyDraft(postID, "signed out")
	require.NoError(t, err)
	_, err = e.SubmitReply(postID, nil)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUnauthenticated))
	thread, err = e.ThreadState(postID)
	require.NoError(t, err)
	assert.True(t, thread.SignInPrompt)

	_, err = e.SetReplyDraft(postID, "   ")
	require.NoError(t, err)
	_, err = e.SubmitReply(postID, ann)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidationFailure))

	thread, err = e.ToggleComposer(postID, ann)
	require.NoError(t, err)
	assert.True(t, thread.ComposerVisible)
	assert.False(t, thread.SignInPrompt)

	_, err = e.SetReplyDraft(postID, "nice one")
	require.NoError(t, err)
	comment, err := e.SubmitReply(postID, ann)
	require.NoError(t, err)
	assert.Equal(t, postID, comment.PostID)

	thread = settleThread(t, e, postID)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, "nice one", thread.Comments[0].Text)
	assert.Equal(t, "Ann", thread.Comments[0].Username)
	assert.False(t, thread.ComposerVisible)
}

func TestUnknownThreadIsNotFound(t *testing.T) {
	e, _ := newStoreEngine(t)

	_, err := e.ThreadState("missing")
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestSessionLossHidesComposers(t *testing.T) {
	e, _ := newStoreEngine(t)
	ann := &models.Identity{Name: "Ann"}

	_, err := e.SetDraft("a post", "")
	require.NoError(t, err)
	_, err = e.SubmitPost(ann)
	require.NoError(t, err)
	postID := settle(t, e).Posts[0].ID

	_, err = e.ToggleComposer(postID, ann)
	require.NoError(t, err)

	e.SessionChanged(nil)
	assert.Eventually(t, func() bool {
		thread, err := e.ThreadState(postID)
		return err == nil && !thread.ComposerVisible
	}, 2*time.Second, 10*time.Millisecond)
}
