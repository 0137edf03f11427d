// internal/database/postgres.go
package database

import (
	"context"
	"fmt"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresDB represents a PostgreSQL connection pool
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB creates a new PostgreSQL connection pool
func NewPostgresDB(ctx context.Context, connectionString string) (*PostgresDB, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 25
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Ping the database to verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL!")

	return &PostgresDB{Pool: pool}, nil
}

// Close closes the connection pool
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Info("Closing PostgreSQL connection...")
	p.Pool.Close()
	return nil
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			profile_img TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			tweet_id TEXT NOT NULL REFERENCES posts(id),
			username TEXT NOT NULL,
			profile_img TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create comments table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS comments_tweet_id_created_at ON comments (tweet_id, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}

	return nil
}

func (p *PostgresDB) CreatePost(ctx context.Context, post *models.Post) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO posts (id, username, profile_img, text, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, post.ID, post.Username, post.ProfileImg, post.Text, post.Image, post.CreatedAt)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save post", err)
	}
	return nil
}

func (p *PostgresDB) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, username, profile_img, text, image, created_at
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Username, &post.ProfileImg, &post.Text, &post.Image, &post.CreatedAt); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "Failed to scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to list posts", err)
	}
	return posts, nil
}

func (p *PostgresDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO comments (id, tweet_id, username, profile_img, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.PostID, comment.Username, comment.ProfileImg, comment.Text, comment.CreatedAt)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err)
	}
	return nil
}

func (p *PostgresDB) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT id, tweet_id, username, profile_img, comment, created_at
		FROM comments
		WHERE tweet_id = $1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to get post comments", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Username, &c.ProfileImg, &c.Text, &c.CreatedAt); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "Failed to scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "Failed to get post comments", err)
	}
	return comments, nil
}

func (p *PostgresDB) PostExists(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := p.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "Failed to look up post", err)
	}
	return exists, nil
}
