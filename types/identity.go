package types

// Identity is the pair submitted at login. It is never persisted.
type Identity struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
