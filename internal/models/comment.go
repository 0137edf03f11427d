package models

import "time"

// Comment is a reply attached to exactly one Post. PostID is a reference
// resolved by the store, not an ownership pointer.
type Comment struct {
	ID         string    `json:"_id"`
	PostID     string    `json:"tweetId"`
	Username   string    `json:"username"`
	ProfileImg string    `json:"profileImg,omitempty"`
	Text       string    `json:"comment"`
	CreatedAt  time.Time `json:"_createdAt"`
}

func (c Comment) AvatarURL() string {
	if c.ProfileImg == "" {
		return DefaultAvatarURL
	}
	return c.ProfileImg
}

func (c Comment) Handle() string {
	return handle(c.Username)
}
