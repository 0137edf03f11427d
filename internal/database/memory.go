package database

import (
	"context"
	"sort"
	"sync"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"
)

// MemoryStore keeps everything in process. It backs tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	posts    []models.Post
	byID     map[string]bool
	comments map[string][]models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]bool),
		comments: make(map[string][]models.Comment),
	}
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byID[post.ID] {
		return utils.NewAppError(utils.ErrDatabase, "duplicate post id "+post.ID, nil)
	}
	s.byID[post.ID] = true
	s.posts = append(s.posts, *post)
	return nil
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	posts := make([]models.Post, len(s.posts))
	copy(posts, s.posts)
	s.mu.RUnlock()

	// Insertion order breaks ties, so equal timestamps list the later write first.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.byID[comment.PostID] {
		return utils.NewAppError(utils.ErrNotFound, "post "+comment.PostID+" not found", nil)
	}
	s.comments[comment.PostID] = append(s.comments[comment.PostID], *comment)
	return nil
}

func (s *MemoryStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	stored := s.comments[postID]
	comments := make([]models.Comment, len(stored))
	copy(comments, stored)
	s.mu.RUnlock()

	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *MemoryStore) PostExists(ctx context.Context, postID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[postID], nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
