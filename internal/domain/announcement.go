package domain

import "time"

// Announcement is a portal-wide broadcast fetched during bootstrap. The store
// does not hold announcements directly; they are folded into it as
// notification records of kind "announcement".
type Announcement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
	RelatedURL string    `json:"relatedUrl,omitempty"`
}

// AsNotification converts the announcement into the store's record shape.
func (a Announcement) AsNotification() Notification {
	return Notification{
		ID:         a.ID,
		Kind:       KindAnnouncement,
		Title:      a.Title,
		Message:    a.Content,
		CreatedAt:  a.CreatedAt,
		IsRead:     a.IsRead,
		RelatedURL: a.RelatedURL,
	}
}
