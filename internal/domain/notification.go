package domain

import "time"

// Kind drives display treatment only; processing never branches on it.
type Kind string

const (
	KindGrade        Kind = "grade"
	KindDeadline     Kind = "deadline"
	KindAnnouncement Kind = "announcement"
	KindQuiz         Kind = "quiz"
	KindAssignment   Kind = "assignment"
	KindInfo         Kind = "info"
)

// Notification is the unified record the store holds, regardless of whether
// it arrived via the bootstrap fetch, a push frame or a local insert.
// IDs are server-assigned; the client only mints ids for records it
// synthesizes itself.
type Notification struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	IsRead     bool       `json:"isRead"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	RelatedURL string     `json:"relatedUrl,omitempty"`
}

// Valid reports whether the record carries the minimum shape required to be
// stored. Push frames not passing this check are dropped.
func (n Notification) Valid() bool {
	return n.ID != "" && !n.CreatedAt.IsZero()
}
