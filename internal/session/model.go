package session

// Marker is the persisted proof that a visitor signed in. Its presence is the
// only access check; it carries no expiry and no signature.
type Marker struct {
	Email string `json:"email"`
}
