package actors

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

type threadFixture struct {
	system   *actor.ActorSystem
	pid      *actor.PID
	loader   *fakeThreadLoader
	submit   *fakeSubmitter
	renderer *recordingRenderer
}

func newThreadFixture(t *testing.T, setup func(*threadFixture)) *threadFixture {
	t.Helper()
	f := &threadFixture{
		system:   actor.NewActorSystem(),
		loader:   newFakeThreadLoader(),
		submit:   &fakeSubmitter{},
		renderer: &recordingRenderer{},
	}
	if setup != nil {
		setup(f)
	}
	deps := Deps{
		ThreadLoader: f.loader,
		Replies:      f.submit,
		Renderer:     f.renderer,
	}
	f.pid = f.system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewThreadActor("p1", deps)
	}))
	t.Cleanup(func() { f.system.Shutdown() })
	return f
}

func (f *threadFixture) waitFor(t *testing.T, cond func(ThreadState) bool) ThreadState {
	t.Helper()
	var last ThreadState
	assert.Eventually(t, func() bool {
		state, ok := threadStateOf(f.system, f.pid)
		last = state
		return ok && cond(state)
	}, 2*time.Second, 10*time.Millisecond)
	return last
}

func loaded(s ThreadState) bool { return s.Status == ThreadLoaded }

var bob = &models.Identity{Name: "Bob", Image: "https://img.test/bob.png"}

func TestThreadLoadsEagerlyOnMount(t *testing.T) {
	f := newThreadFixture(t, func(f *threadFixture) {
		f.loader.comments["p1"] = []models.Comment{
			{ID: "c1", PostID: "p1", Text: "first"},
			{ID: "c2", PostID: "p1", Text: "second"},
		}
	})

	state := f.waitFor(t, loaded)
	assert.Len(t, state.Comments, 2)
	assert.False(t, state.ComposerVisible, "the composer only opens on user action")
	assert.Equal(t, 1, f.loader.Calls("p1"))
}

func TestThreadInitialFailureCollapses(t *testing.T) {
	f := newThreadFixture(t, func(f *threadFixture) {
		f.loader.failing["p1"] = utils.NewFetchFailure("comments for p1", errors.New("boom"))
	})

	state := f.waitFor(t, func(s ThreadState) bool { return s.LastError != nil })
	assert.Equal(t, ThreadCollapsed, state.Status)
	assert.Empty(t, state.Comments)
}

func TestToggleComposerRequiresSession(t *testing.T) {
	f := newThreadFixture(t, nil)
	f.waitFor(t, loaded)

	result, err := ask(f.system, f.pid, &ToggleComposerMsg{Session: bob})
	require.NoError(t, err)
	assert.True(t, result.(ThreadState).ComposerVisible)

	result, err = ask(f.system, f.pid, &SessionChangedMsg{Session: nil})
	require.NoError(t, err)
	assert.False(t, result.(ThreadState).ComposerVisible, "losing the session hides the composer")

	result, err = ask(f.system, f.pid, &ToggleComposerMsg{Session: nil})
	require.NoError(t, err)
	state := result.(ThreadState)
	assert.False(t, state.ComposerVisible)
	assert.True(t, state.SignInPrompt)
}

func TestUnauthenticatedReplyShowsSignInPrompt(t *testing.T) {
	f := newThreadFixture(t, nil)
	f.waitFor(t, loaded)

	_, err := ask(f.system, f.pid, &ToggleComposerMsg{Session: bob})
	require.NoError(t, err)
	_, err = ask(f.system, f.pid, &SetReplyDraftMsg{Text: "nice"})
	require.NoError(t, err)

	result, err := ask(f.system, f.pid, &SubmitReplyMsg{Author: nil})
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(*utils.AppError), utils.ErrUnauthenticated))

	state, ok := threadStateOf(f.system, f.pid)
	require.True(t, ok)
	assert.True(t, state.SignInPrompt)
	assert.False(t, state.ComposerVisible)
	assert.Equal(t, "nice", state.Draft.Text)

	_, replies := f.submit.counts()
	assert.Zero(t, replies, "no write without a session")
}

func TestBlankReplyIsRejected(t *testing.T) {
	f := newThreadFixture(t, nil)
	f.waitFor(t, loaded)

	result, err := ask(f.system, f.pid, &SetReplyDraftMsg{Text: "  "})
	require.NoError(t, err)
	assert.False(t, result.(ThreadState).CanSubmit)

	result, err = ask(f.system, f.pid, &SubmitReplyMsg{Author: bob})
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(*utils.AppError), utils.ErrValidationFailure))

	state, ok := threadStateOf(f.system, f.pid)
	require.True(t, ok)
	assert.False(t, state.CanSubmit)

	_, replies := f.submit.counts()
	assert.Zero(t, replies)
	assert.Equal(t, 1, f.loader.Calls("p1"))
}

func TestReplySuccessReloadsThread(t *testing.T) {
	f := newThreadFixture(t, nil)
	f.waitFor(t, loaded)

	_, err := ask(f.system, f.pid, &ToggleComposerMsg{Session: bob})
	require.NoError(t, err)
	_, err = ask(f.system, f.pid, &SetReplyDraftMsg{Text: " great point "})
	require.NoError(t, err)

	f.loader.mu.Lock()
	f.loader.comments["p1"] = []models.Comment{{ID: "c9", PostID: "p1", Text: "great point", Username: "Bob"}}
	f.loader.mu.Unlock()

	result, err := ask(f.system, f.pid, &SubmitReplyMsg{Author: bob})
	require.NoError(t, err)
	comment, ok := result.(*models.Comment)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, "great point", comment.Text)
	assert.Equal(t, "p1", comment.PostID)

	state := f.waitFor(t, func(s ThreadState) bool { return loaded(s) && len(s.Comments) == 1 })
	assert.Empty(t, state.Draft.Text)
	assert.False(t, state.ComposerVisible)
	assert.Equal(t, 2, f.loader.Calls("p1"), "exactly one reload after the write")
}

func TestReplyFailurePreservesDraft(t *testing.T) {
	f := newThreadFixture(t, func(f *threadFixture) {
		f.submit.err = utils.NewWriteFailure("comment on p1", errors.New("502"))
	})
	f.waitFor(t, loaded)

	_, err := ask(f.system, f.pid, &ToggleComposerMsg{Session: bob})
	require.NoError(t, err)
	_, err = ask(f.system, f.pid, &SetReplyDraftMsg{Text: "keep me"})
	require.NoError(t, err)

	result, err := ask(f.system, f.pid, &SubmitReplyMsg{Author: bob})
	require.NoError(t, err)
	assert.True(t, utils.IsErrorCode(result.(*utils.AppError), utils.ErrWriteFailure))

	state, ok := threadStateOf(f.system, f.pid)
	require.True(t, ok)
	assert.Equal(t, "keep me", state.Draft.Text)
	assert.True(t, state.ComposerVisible)
	assert.True(t, state.CanSubmit)
	assert.Equal(t, 1, f.loader.Calls("p1"))
}

func TestTeardownDiscardsLateLoad(t *testing.T) {
	gate := make(chan struct{})
	f := newThreadFixture(t, func(f *threadFixture) {
		f.loader.gate = gate
		f.loader.comments["p1"] = []models.Comment{{ID: "late", PostID: "p1"}}
	})

	assert.Eventually(t, func() bool { return f.loader.Calls("p1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.system.Root.StopFuture(f.pid).Wait())
	renders := f.renderer.threadRenders()

	assert.Error(t, f.loader.Ctx().Err(), "teardown cancels the in-flight load")

	close(gate)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, renders, f.renderer.threadRenders(), "nothing renders after teardown")
}

func TestThreadLimitBoundsConcurrentLoads(t *testing.T) {
	system := actor.NewActorSystem()
	t.Cleanup(func() { system.Shutdown() })

	gate := make(chan struct{})
	loader := newFakeThreadLoader()
	loader.gate = gate
	deps := Deps{
		ThreadLoader: loader,
		Replies:      &fakeSubmitter{},
		ThreadLimit:  semaphore.NewWeighted(2),
	}

	pids := make([]*actor.PID, 0, 5)
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		postID := id
		pids = append(pids, system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
			return NewThreadActor(postID, deps)
		})))
	}

	time.Sleep(100 * time.Millisecond)
	close(gate)

	for _, pid := range pids {
		pid := pid
		assert.Eventually(t, func() bool {
			state, ok := threadStateOf(system, pid)
			return ok && loaded(state)
		}, 2*time.Second, 10*time.Millisecond)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&loader.peak), int32(2))
}
