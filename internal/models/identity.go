package models

// Identity is the signed-in user as supplied by the authentication
// collaborator. A nil *Identity means nobody is signed in.
type Identity struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// UnknownUser is written as the author when a post is submitted anonymously.
var UnknownUser = Identity{
	Name:  "Unknown User",
	Image: DefaultAvatarURL,
}

// OrUnknown resolves the author fields for a write, filling the gaps with
// UnknownUser.
func (i *Identity) OrUnknown() Identity {
	if i == nil {
		return UnknownUser
	}
	resolved := *i
	if resolved.Name == "" {
		resolved.Name = UnknownUser.Name
	}
	if resolved.Image == "" {
		resolved.Image = UnknownUser.Image
	}
	return resolved
}
