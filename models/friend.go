package models

// FriendStatus is one side of a bidirectional relationship.
type FriendStatus string

const (
	// StatusWaiting: this user sent a request that is still pending.
	StatusWaiting FriendStatus = "waiting"
	// StatusRequest: the other user sent a request to this user.
	StatusRequest FriendStatus = "request"
	// StatusConfirmed: the friendship is mutual.
	StatusConfirmed FriendStatus = "confirmed"
)

// Friend is the document stored under users/{owner}/friends/{id}. The
// mirror record lives under the other participant; the two are always
// written in the same batch so neither side can be observed alone.
type Friend struct {
	ID     string       `json:"id"`
	Status FriendStatus `json:"status"`
}
