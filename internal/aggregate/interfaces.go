package aggregate

import (
	"context"

	"eduboard/internal/domain"
)

// Fetcher is the slice of the portal API the bootstrap needs.
// *client.Client satisfies it.
type Fetcher interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
	Announcements(ctx context.Context) ([]domain.Announcement, error)
	Settings(ctx context.Context) (domain.Settings, error)
	Overview(ctx context.Context) (domain.Overview, error)
}
