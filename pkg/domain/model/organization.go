package model

import (
	"time"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// Organization represents an insurance carrier (e.g. Protective Life)
type Organization struct {
	ID          types.OrganizationID
	Name        string // normalized name (lowercase, underscores)
	DisplayName string // human-readable name used for lookups
	CreatedAt   time.Time
}
