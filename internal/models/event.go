package models

// Feed event actions carried on the live event stream.
const (
	FeedActionCreate = "create"
	FeedActionUpdate = "update"
	FeedActionDelete = "delete"
)

// FeedEvent is the wire format delivered to WebSocket clients whenever the
// feed changes. Create and update events carry the full post; delete events
// carry only the post ID.
type FeedEvent struct {
	Action string `json:"action"`
	Post   *Post  `json:"post,omitempty"`
	PostID uint   `json:"postId,omitempty"`
}
