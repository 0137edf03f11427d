package actors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"twitter-clone/internal/models"

	"github.com/asynkron/protoactor-go/actor"
)

const askTimeout = 2 * time.Second

type fakeFeedLoader struct {
	mu    sync.Mutex
	posts []models.Post
	err   error
	calls int32
}

func (l *fakeFeedLoader) Load(ctx context.Context) ([]models.Post, error) {
	atomic.AddInt32(&l.calls, 1)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	posts := make([]models.Post, len(l.posts))
	copy(posts, l.posts)
	return posts, nil
}

func (l *fakeFeedLoader) set(posts []models.Post, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posts = posts
	l.err = err
}

func (l *fakeFeedLoader) Calls() int {
	return int(atomic.LoadInt32(&l.calls))
}

type fakeThreadLoader struct {
	mu       sync.Mutex
	comments map[string][]models.Comment
	failing  map[string]error
	calls    map[string]int

	// gate, when set, holds every load until it is closed.
	gate     chan struct{}
	lastCtx  context.Context
	inFlight int32
	peak     int32
}

func newFakeThreadLoader() *fakeThreadLoader {
	return &fakeThreadLoader{
		comments: make(map[string][]models.Comment),
		failing:  make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (l *fakeThreadLoader) Load(ctx context.Context, postID string) ([]models.Comment, error) {
	l.mu.Lock()
	l.calls[postID]++
	l.lastCtx = ctx
	gate := l.gate
	l.mu.Unlock()

	current := atomic.AddInt32(&l.inFlight, 1)
	for {
		peak := atomic.LoadInt32(&l.peak)
		if current <= peak || atomic.CompareAndSwapInt32(&l.peak, peak, current) {
			break
		}
	}
	defer atomic.AddInt32(&l.inFlight, -1)

	if gate != nil {
		<-gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failing[postID]; err != nil {
		return nil, err
	}
	comments := append([]models.Comment{}, l.comments[postID]...)
	return comments, nil
}

func (l *fakeThreadLoader) Calls(postID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[postID]
}

func (l *fakeThreadLoader) Ctx() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCtx
}

type fakeSubmitter struct {
	mu      sync.Mutex
	posts   []models.PostDraft
	replies []models.ReplyDraft
	err     error
	gate    chan struct{}
}

func (s *fakeSubmitter) SubmitPost(ctx context.Context, draft models.PostDraft, author *models.Identity) (*models.Post, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, draft)
	if s.err != nil {
		return nil, s.err
	}
	who := author.OrUnknown()
	return &models.Post{Text: draft.Trimmed(), Username: who.Name, ProfileImg: who.Image}, nil
}

func (s *fakeSubmitter) SubmitReply(ctx context.Context, draft models.ReplyDraft, postID string, author *models.Identity) (*models.Comment, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, draft)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Comment{PostID: postID, Text: draft.Trimmed(), Username: author.Name}, nil
}

func (s *fakeSubmitter) wait() {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (s *fakeSubmitter) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts), len(s.replies)
}

type recordingRenderer struct {
	mu      sync.Mutex
	feeds   []FeedState
	threads []ThreadState
}

func (r *recordingRenderer) RenderFeed(state FeedState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds = append(r.feeds, state)
}

func (r *recordingRenderer) RenderThread(state ThreadState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads = append(r.threads, state)
}

func (r *recordingRenderer) threadRenders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.threads)
}

func ask(system *actor.ActorSystem, pid *actor.PID, msg interface{}) (interface{}, error) {
	return system.Root.RequestFuture(pid, msg, askTimeout).Result()
}

func feedStateOf(system *actor.ActorSystem, pid *actor.PID) (FeedState, bool) {
	result, err := ask(system, pid, &GetFeedStateMsg{})
	if err != nil {
		return FeedState{}, false
	}
	state, ok := result.(FeedState)
	return state, ok
}

func threadStateOf(system *actor.ActorSystem, pid *actor.PID) (ThreadState, bool) {
	result, err := ask(system, pid, &GetThreadStateMsg{})
	if err != nil {
		return ThreadState{}, false
	}
	state, ok := result.(ThreadState)
	return state, ok
}
