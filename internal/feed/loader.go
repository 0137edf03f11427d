// Package feed holds the read side of the synchronization layer: loaders
// that turn content store reads into ordered, self-consistent snapshots.
package feed

import (
	"context"
	"sort"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
)

// PostSource is the read half of the content store consumed by FeedLoader.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

// CommentSource is the read half of the content store consumed by
// CommentThreadLoader.
type CommentSource interface {
	FetchComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// FeedLoader fetches the top-level post list.
type FeedLoader interface {
	Load(ctx context.Context) ([]models.Post, error)
}

// CommentThreadLoader fetches one post's comments, oldest first.
type CommentThreadLoader interface {
	Load(ctx context.Context, postID string) ([]models.Comment, error)
}

// StoreFeedLoader loads the feed from a PostSource. The store's order
// (newest first) is kept as is.
type StoreFeedLoader struct {
	source PostSource
}

func NewStoreFeedLoader(source PostSource) *StoreFeedLoader {
	return &StoreFeedLoader{source: source}
}

func (l *StoreFeedLoader) Load(ctx context.Context) ([]models.Post, error) {
	posts, err := l.source.FetchPosts(ctx)
	if err != nil {
		return nil, asFetchFailure("posts", err)
	}
	log.Debugf("Loaded %d posts", len(posts))
	return posts, nil
}

// StoreThreadLoader loads a comment thread from a CommentSource. Comments
// referencing another post are dropped, and the rest are put in reading
// order.
type StoreThreadLoader struct {
	source CommentSource
}

func NewStoreThreadLoader(source CommentSource) *StoreThreadLoader {
	return &StoreThreadLoader{source: source}
}

func (l *StoreThreadLoader) Load(ctx context.Context, postID string) ([]models.Comment, error) {
	if postID == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "thread load needs a persisted post id", nil)
	}

	fetched, err := l.source.FetchComments(ctx, postID)
	if err != nil {
		return nil, asFetchFailure("comments for "+postID, err)
	}

	comments := make([]models.Comment, 0, len(fetched))
	for _, comment := range fetched {
		if comment.PostID != postID {
			log.WithFields(log.Fields{
				"postId":    postID,
				"commentId": comment.ID,
				"parentId":  comment.PostID,
			}).Warn("Dropping comment that belongs to another thread")
			continue
		}
		comments = append(comments, comment)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func asFetchFailure(what string, err error) error {
	if utils.IsErrorCode(err, utils.ErrFetchFailure) {
		return err
	}
	return utils.NewFetchFailure(what, err)
}

// EqualPosts reports whether two snapshots hold the same posts in the same
// order, regardless of instance identity.
func EqualPosts(a, b []models.Post) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !samePost(a[i], b[i]) {
			return false
		}
	}
	return true
}

func samePost(a, b models.Post) bool {
	return a.ID == b.ID &&
		a.Username == b.Username &&
		a.ProfileImg == b.ProfileImg &&
		a.Text == b.Text &&
		a.Image == b.Image &&
		a.CreatedAt.Equal(b.CreatedAt)
}

// EqualComments is EqualPosts for comment threads.
func EqualComments(a, b []models.Comment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].PostID != b[i].PostID ||
			a[i].Username != b[i].Username ||
			a[i].ProfileImg != b[i].ProfileImg ||
			a[i].Text != b[i].Text ||
			!a[i].CreatedAt.Equal(b[i].CreatedAt) {
			return false
		}
	}
	return true
}
