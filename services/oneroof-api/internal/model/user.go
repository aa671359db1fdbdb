package model

// User is the profile record linked to a remote auth identity. The
// identity and the profile are created together at sign-up and must stay
// in sync; AccountID carries the external reference.
type User struct {
	ID        string
	AccountID string
	Email     string
	Username  string
	AvatarURL string
}

// Session proves a successful authentication. The secret authorizes
// identity lookups and is threaded explicitly through every call; there
// is no ambient current-user state.
type Session struct {
	ID     string
	UserID string
	Secret string
}
