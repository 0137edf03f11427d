// Package store is the HTTP boundary to the remote content store.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"twitter-clone/internal/config"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	log "github.com/sirupsen/logrus"
)

const (
	// DatasetHeader names the dataset every request is addressed to.
	DatasetHeader = "X-Store-Dataset"

	maxErrorBody = 512
)

// Client performs the create/read operations the feed layer consumes.
type Client struct {
	baseURL string
	dataset string
	token   string
	client  *http.Client
	metrics *utils.MetricsCollector
}

func NewClient(cfg *config.StoreConfig, metrics *utils.MetricsCollector) *Client {
	if metrics == nil {
		metrics = utils.NewMetricsCollector()
	}
	return &Client{
		baseURL: cfg.URL,
		dataset: cfg.Dataset,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		metrics: metrics,
	}
}

// FetchPosts returns the feed in the order the store provides (newest first).
func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	body, err := c.makeRequest(ctx, "fetch_posts", http.MethodGet, "/getTweets", nil)
	if err != nil {
		return nil, utils.NewFetchFailure("posts", err)
	}

	var resp models.PostsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, utils.NewFetchFailure("posts", fmt.Errorf("failed to parse posts response: %w", err))
	}
	if resp.Tweets == nil {
		resp.Tweets = []models.Post{}
	}
	return resp.Tweets, nil
}

// FetchComments returns the comments the store holds for postID.
func (c *Client) FetchComments(ctx context.Context, postID string) ([]models.Comment, error) {
	endpoint := "/getComments?tweetId=" + url.QueryEscape(postID)

	body, err := c.makeRequest(ctx, "fetch_comments", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, utils.NewFetchFailure("comments for "+postID, err)
	}

	var comments []models.Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, utils.NewFetchFailure("comments for "+postID, fmt.Errorf("failed to parse comments response: %w", err))
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (c *Client) AddPost(ctx context.Context, req models.AddPostRequest) (*models.WriteAck, error) {
	body, err := c.makeRequest(ctx, "add_post", http.MethodPost, "/addPost", req)
	if err != nil {
		return nil, utils.NewWriteFailure("post", err)
	}
	return parseAck(body), nil
}

func (c *Client) AddComment(ctx context.Context, req models.AddCommentRequest) (*models.WriteAck, error) {
	body, err := c.makeRequest(ctx, "add_comment", http.MethodPost, "/addComment", req)
	if err != nil {
		return nil, utils.NewWriteFailure("comment on "+req.TweetID, err)
	}
	return parseAck(body), nil
}

// parseAck never fails: the status code already decided success.
func parseAck(body []byte) *models.WriteAck {
	var ack models.WriteAck
	if err := json.Unmarshal(body, &ack); err != nil {
		log.Debugf("Ignoring unparseable write acknowledgement: %v", err)
	}
	return &ack
}

// Helper method to make HTTP requests
func (c *Client) makeRequest(ctx context.Context, operation, method, endpoint string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(DatasetHeader, c.dataset)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	c.recordRequestMetrics(operation, start, err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncrementErrors(operation)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.WithFields(log.Fields{
			"operation": operation,
			"status":    resp.StatusCode,
		}).Warn("Content store returned an error status")
		return nil, &utils.StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) recordRequestMetrics(operation string, start time.Time, err error) {
	c.metrics.IncrementRequests(operation)
	c.metrics.AddOperationLatency(operation, time.Since(start))
	if err != nil {
		c.metrics.IncrementErrors(operation)
		log.WithField("operation", operation).Debugf("Content store request failed: %v", err)
	}
}
