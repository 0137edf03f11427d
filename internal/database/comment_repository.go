package database

import (
	"context"
	"time"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID         string    `bson:"_id"`
	TweetID    string    `bson:"tweetid"`
	Username   string    `bson:"username"`
	ProfileImg string    `bson:"profileimg,omitempty"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"createdat"`
}

func convertCommentModelToDocument(comment *models.Comment) *CommentDocument {
	return &CommentDocument{
		ID:         comment.ID,
		TweetID:    comment.PostID,
		Username:   comment.Username,
		ProfileImg: comment.ProfileImg,
		Comment:    comment.Text,
		CreatedAt:  comment.CreatedAt,
	}
}

func convertCommentDocumentToModel(doc *CommentDocument) models.Comment {
	return models.Comment{
		ID:         doc.ID,
		PostID:     doc.TweetID,
		Username:   doc.Username,
		ProfileImg: doc.ProfileImg,
		Text:       doc.Comment,
		CreatedAt:  doc.CreatedAt,
	}
}

// CreateComment stores a comment. The caller has already checked that
// the referenced post exists.
func (m *MongoDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	log.Debugf("Saving comment %s on post %s", comment.ID, comment.PostID)

	if _, err := m.Comments.InsertOne(ctx, convertCommentModelToDocument(comment)); err != nil {
		log.Errorf("Error saving comment %s: %v", comment.ID, err)
		return utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err)
	}
	return nil
}

// ListComments retrieves all comments for a post, newest first.
func (m *MongoDB) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	cursor, err := m.Comments.Find(ctx, bson.M{"tweetid": postID}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to get post comments", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Errorf("Error decoding comment: %v", err)
			continue
		}
		comments = append(comments, convertCommentDocumentToModel(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to get post comments", err)
	}
	return comments, nil
}
