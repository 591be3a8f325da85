package model

import (
	"time"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// Product represents an insurance product type (Life, Annuity, ABLTC, Disability)
type Product struct {
	ID          types.ProductID
	Name        string
	Description string
	CreatedAt   time.Time
}
