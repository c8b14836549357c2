package user

import "github.com/google/uuid"

// User is an account row. Metadata carries whatever profile fields the
// identity flow captured (display name, avatar) in provider-agnostic form.
type User struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Password  string         `json:"password,omitempty"`
	FullName  string         `json:"fullName,omitempty"`
	AvatarURL string         `json:"avatarUrl,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

// Profile is the projection the storefront renders: id plus best-effort
// display fields.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// ProjectProfile derives the display projection from an account. Provider
// metadata wins over stored columns, with the full_name/name and
// avatar_url/picture fallback chains.
func ProjectProfile(u User) Profile {
	p := Profile{ID: u.ID, Email: u.Email, Name: u.FullName, AvatarURL: u.AvatarURL}

	if v := metaString(u.Metadata, "full_name"); v != "" {
		p.Name = v
	} else if v := metaString(u.Metadata, "name"); v != "" {
		p.Name = v
	}
	if v := metaString(u.Metadata, "avatar_url"); v != "" {
		p.AvatarURL = v
	} else if v := metaString(u.Metadata, "picture"); v != "" {
		p.AvatarURL = v
	}
	return p
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
