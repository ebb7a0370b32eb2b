package session

import "time"

const (
	EventCreated         = "session.created"
	EventEnded           = "session.ended"
	EventGalleriesLoaded = "galleries.loaded"
	EventTopicToggled    = "topic.toggled"
	EventSubtopicToggled = "subtopic.toggled"
	EventGalleryToggled  = "gallery.toggled"
	EventDetailShown     = "detail.shown"
	EventDetailClosed    = "detail.closed"
	EventCartAdded       = "cart.added"
	EventCartOpened      = "cart.opened"
	EventCartClosed      = "cart.closed"
	EventCartCleared     = "cart.cleared"
	EventCartRemoved     = "cart.removed"
	EventCheckedOut      = "cart.checked_out"
)

// Event carries the full state after a change, so subscribers never need
// to replay history. Events of one session are delivered in State.Seq order.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	State     Snapshot  `json:"state"`
	At        time.Time `json:"at"`
}
