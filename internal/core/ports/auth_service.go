package ports

import (
	"context"

	"github.com/timeclerk/timesheet-engine/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, timezone string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
