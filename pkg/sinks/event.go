package sinks

import "time"

// Event represents a call result forwarded downstream.
type Event struct {
	ProfileID string         `json:"profile_id"`
	Method    string         `json:"method"`
	URL       string         `json:"url"`
	Result    map[string]any `json:"result"`
	CalledAt  time.Time      `json:"called_at"`
}

// NewEvent constructs an Event for the given call.
func NewEvent(profileID, method, url string, result map[string]any) Event {
	return Event{
		ProfileID: profileID,
		Method:    method,
		URL:       url,
		Result:    result,
		CalledAt:  time.Now().UTC(),
	}
}

// attributes are attached as message metadata by queue-style sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"profile_id": e.ProfileID,
		"method":     e.Method,
	}
}
