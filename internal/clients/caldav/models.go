package caldav

import "time"

// Calendar is one calendar collection discovered on the server.
type Calendar struct {
	Path        string
	DisplayName string
}

// Event is the wire-level shape published to the CalDAV server.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	RRule       string // RFC 5545 RRULE value, empty for one-off events
}
