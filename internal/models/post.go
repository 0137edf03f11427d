package models

import (
	"strings"
	"time"
)

// DefaultAvatarURL is shown for authors without a profile image.
const DefaultAvatarURL = "https://links.papareact.com/gll"

// Post is a top-level feed entry as returned by the content store.
// Instances are read-only once fetched; a refresh produces new ones.
type Post struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	ProfileImg string    `json:"profileImg,omitempty"`
	Text       string    `json:"text"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"_createdAt"`
}

// AvatarURL returns the author's profile image or the placeholder.
func (p Post) AvatarURL() string {
	if p.ProfileImg == "" {
		return DefaultAvatarURL
	}
	return p.ProfileImg
}

// Handle renders the author as "@name" with whitespace removed.
func (p Post) Handle() string {
	return handle(p.Username)
}

func handle(username string) string {
	return "@" + strings.ToLower(strings.Join(strings.Fields(username), ""))
}
