package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SimulateActivities runs posting until the context ends and starts replying
// once the first posts exist.
func (s *EnhancedSimulator) SimulateActivities(ctx context.Context) error {
	log.Info("Starting activities simulation...")

	postsAvailable := make(chan struct{})
	var once sync.Once
	signal := func() { once.Do(func() { close(postsAvailable) }) }

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.simulatePosts(ctx, signal)
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-postsAvailable:
			log.Info("Starting comments after posts available...")
			s.simulateComments(ctx)
			return nil
		}
	})
	return g.Wait()
}

func (s *EnhancedSimulator) simulatePosts(ctx context.Context, postsAvailable func()) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.forEachUser(ctx, func(user *SimulatedUser) {
				if !s.chance(s.config.PostFrequency) {
					return
				}

				text := fmt.Sprintf("Tweet from %s at %s", user.Session().OrUnknown().Name, time.Now().Format(time.RFC3339))
				start := time.Now()
				_, err := user.Engine.SetDraft(text, "")
				if err == nil {
					_, err = user.Engine.SubmitPost(user.Session())
				}
				s.recordRequestMetrics(start, err)
				if err != nil {
					log.Debugf("Failed to post as %s: %v", user.ID, err)
					return
				}

				s.stats.mu.Lock()
				s.stats.TotalPosts++
				s.stats.mu.Unlock()
				postsAvailable()
			})
		}
	}
}

func (s *EnhancedSimulator) simulateComments(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.forEachUser(ctx, func(user *SimulatedUser) {
				if !s.chance(s.config.CommentFrequency) {
					return
				}

				postID, err := s.getRandomPostToComment(user)
				if err != nil {
					return
				}

				start := time.Now()
				_, err = user.Engine.SetReplyDraft(postID, fmt.Sprintf("Reply %d", rand.Intn(1000)))
				if err == nil {
					_, err = user.Engine.SubmitReply(postID, user.Session())
				}

				switch {
				case utils.IsErrorCode(err, utils.ErrUnauthenticated):
					// The thread showed a sign-in prompt; nothing reached the store.
					s.stats.mu.Lock()
					s.stats.RejectedReplies++
					s.stats.mu.Unlock()
				case utils.IsErrorCode(err, utils.ErrNotFound):
					// Thread unmounted by a concurrent refresh.
				default:
					s.recordRequestMetrics(start, err)
					if err == nil {
						s.stats.mu.Lock()
						s.stats.TotalComments++
						s.stats.mu.Unlock()
					}
				}
			})
		}
	}
}

// forEachUser runs fn for every connected-or-anonymous user concurrently and
// waits for all of them.
func (s *EnhancedSimulator) forEachUser(ctx context.Context, fn func(user *SimulatedUser)) {
	s.mu.RLock()
	users := make([]*SimulatedUser, len(s.users))
	copy(users, s.users)
	s.mu.RUnlock()

	var wg sync.WaitGroup
	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(user *SimulatedUser) {
			defer wg.Done()
			fn(user)
		}(user)
	}
	wg.Wait()
}

// getRandomPostToComment picks a post from the user's feed, favouring the
// newest ones.
func (s *EnhancedSimulator) getRandomPostToComment(user *SimulatedUser) (string, error) {
	state, err := user.Engine.State()
	if err != nil {
		return "", err
	}
	if len(state.Posts) == 0 {
		return "", fmt.Errorf("no posts available")
	}
	return state.Posts[s.getZipfNumber(len(state.Posts))].ID, nil
}
