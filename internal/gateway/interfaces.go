package gateway

import (
	"context"

	"eduboard/internal/domain"
)

// API is the slice of the portal REST surface the gateway confirms mutations
// against. *client.Client satisfies it.
type API interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	UpdateSettings(ctx context.Context, s domain.Settings) error
}
