// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"twitter-clone/internal/config"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the persistence behind the reference content store.
// Listings are newest first.
type Repository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	PostExists(ctx context.Context, postID string) (bool, error)
	Close(ctx context.Context) error
}

// NewRepository opens the backend selected by cfg.Type.
func NewRepository(ctx context.Context, cfg *config.DatabaseConfig) (Repository, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "mongo":
		return NewMongoDB(ctx, cfg.URI, cfg.Name)
	case "postgres":
		db, err := NewPostgresDB(ctx, cfg.URI)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeTables(ctx); err != nil {
			db.Close(ctx)
			return nil, err
		}
		return db, nil
	default:
		return nil, utils.NewConfigError("DB_TYPE", fmt.Sprintf("unsupported database type %q", cfg.Type))
	}
}

type MongoDB struct {
	Client   *mongo.Client
	Posts    *mongo.Collection
	Comments *mongo.Collection
}

func NewMongoDB(ctx context.Context, uri, name string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Info("Successfully connected to MongoDB!")

	db := client.Database(name)
	m := &MongoDB{
		Client:   client,
		Posts:    db.Collection("posts"),
		Comments: db.Collection("comments"),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		log.Warnf("Failed to create MongoDB indexes: %v", err)
	}
	return m, nil
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	if _, err := m.Posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdat", Value: -1}},
	}); err != nil {
		return err
	}
	_, err := m.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tweetid", Value: 1}, {Key: "createdat", Value: -1}},
	})
	return err
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
