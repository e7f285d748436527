package types

import (
	"time"

	"github.com/google/uuid"
)

// Company is a stored company record as returned by the portal API.
type Company struct {
	ID             uuid.UUID `json:"id"`
	NameNormalized string    `json:"nameNormalized"`
	CompanyDraft
	CreatedAt time.Time `json:"createdAt"`
}
