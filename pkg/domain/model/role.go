package model

import (
	"time"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// Role represents a team role profile (CPO, COO, ...) used for
// persona-conditioned answers. Goal and Backstory feed the LLM when the
// navigator assumes the role's perspective.
type Role struct {
	ID          types.RoleID
	Name        string // full role name, e.g. "Chief Product Officer"
	ShortName   string // e.g. "CPO"
	Goal        string
	Backstory   string
	Temperature float64
	CreatedAt   time.Time
}
