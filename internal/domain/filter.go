package domain

import (
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
)

// Filter is a user-owned named criteria expression used to select the
// solicitations worth mailing out.
type Filter struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"userId"`
	Name      string         `json:"name"`
	Criteria  *criteria.Node `json:"criteria"`
	CreatedAt time.Time      `json:"createdAt"`
	Version   int32          `json:"-"`
}
