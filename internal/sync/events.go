package sync

import "time"

// Welcome is the first line written to every new subscriber.
type Welcome struct {
	Type      string    `json:"type"` // always "welcome"
	Transport string    `json:"transport"`
	SessionID string    `json:"session_id,omitempty"`
	Clients   int       `json:"clients"`
	At        time.Time `json:"at"`
}

func newWelcome(transport, sessionID string, clients int) Welcome {
	return Welcome{
		Type:      "welcome",
		Transport: transport,
		SessionID: sessionID,
		Clients:   clients,
		At:        time.Now().UTC(),
	}
}
