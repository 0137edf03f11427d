// internal/database/post_repository.go
package database

import (
	"context"
	"time"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID         string    `bson:"_id"`
	Username   string    `bson:"username"`
	ProfileImg string    `bson:"profileimg,omitempty"`
	Text       string    `bson:"text"`
	Image      string    `bson:"image,omitempty"`
	CreatedAt  time.Time `bson:"createdat"`
}

// ModelToDocument converts a Post model to a MongoDB document.
func (m *MongoDB) ModelToDocument(post *models.Post) *PostDocument {
	return &PostDocument{
		ID:         post.ID,
		Username:   post.Username,
		ProfileImg: post.ProfileImg,
		Text:       post.Text,
		Image:      post.Image,
		CreatedAt:  post.CreatedAt,
	}
}

// DocumentToModel converts a MongoDB document to a Post model.
func (m *MongoDB) DocumentToModel(doc *PostDocument) models.Post {
	return models.Post{
		ID:         doc.ID,
		Username:   doc.Username,
		ProfileImg: doc.ProfileImg,
		Text:       doc.Text,
		Image:      doc.Image,
		CreatedAt:  doc.CreatedAt,
	}
}

func (m *MongoDB) CreatePost(ctx context.Context, post *models.Post) error {
	if _, err := m.Posts.InsertOne(ctx, m.ModelToDocument(post)); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save post", err)
	}
	return nil
}

// ListPosts returns every post, newest first.
func (m *MongoDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Errorf("Error decoding post document: %v", err)
			continue
		}
		posts = append(posts, m.DocumentToModel(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err)
	}
	return posts, nil
}

func (m *MongoDB) PostExists(ctx context.Context, postID string) (bool, error) {
	err := m.Posts.FindOne(ctx, bson.M{"_id": postID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "Failed to look up post", err)
	}
	return true, nil
}
