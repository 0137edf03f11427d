package models

import "strings"

// PostDraft is unpersisted composer input for a new post.
type PostDraft struct {
	Text  string `json:"text" validate:"notblank"`
	Image string `json:"image,omitempty"`
}

func (d PostDraft) Trimmed() string {
	return strings.TrimSpace(d.Text)
}

// ReplyDraft is unpersisted composer input for a reply.
type ReplyDraft struct {
	Text string `json:"comment" validate:"notblank"`
}

func (d ReplyDraft) Trimmed() string {
	return strings.TrimSpace(d.Text)
}

// AddPostRequest is the body of POST /addPost.
type AddPostRequest struct {
	Text       string `json:"text" validate:"notblank"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg"`
	Image      string `json:"image,omitempty"`
}

// AddCommentRequest is the body of POST /addComment.
type AddCommentRequest struct {
	Comment    string `json:"comment" validate:"notblank"`
	TweetID    string `json:"tweetId" validate:"notblank"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg"`
}

// WriteAck is the store's acknowledgement of a create. Only the fact that
// it arrived with a success status is relied upon.
type WriteAck struct {
	Message string `json:"message"`
}

// PostsResponse is the body of GET /getTweets.
type PostsResponse struct {
	Tweets []Post `json:"tweets"`
}
