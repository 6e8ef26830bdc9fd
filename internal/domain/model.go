package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page sizes accepted by list endpoints.
const (
	PerPageSmall  = 25
	PerPageMedium = 50
	PerPageLarge  = 100
)

// NormalizePerPage coerces any requested page size into {25, 50, 100}.
func NormalizePerPage(n int) int {
	switch {
	case n <= PerPageSmall:
		return PerPageSmall
	case n <= PerPageMedium:
		return PerPageMedium
	default:
		return PerPageLarge
	}
}

// PageRequest holds pagination and filtering parameters for list queries.
type PageRequest struct {
	Page    int
	PerPage int
	Query   string
	Status  Status
}

// PageMeta describes the position of a page within a result set.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// PageResult is one page of items plus its metadata.
type PageResult[T any] struct {
	Items []T      `json:"data"`
	Meta  PageMeta `json:"meta"`
}
