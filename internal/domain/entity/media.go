package entity

import "time"

type MediaAsset struct {
	SourceURL   string `json:"-"`
	TicketID    string `json:"ticket_id"`
	GeneratedID string `json:"generated_id"`
	ContentType string `json:"content_type"`
	Extension   string `json:"extension"`
	Size        int    `json:"size"`
}

// Path is where the asset lives in object storage.
func (m MediaAsset) Path() string {
	return MediaPrefix(m.TicketID) + m.GeneratedID + m.Extension
}

// MediaObject is an entry listed from object storage.
type MediaObject struct {
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
