package domain

// PageRequest carries limit/offset pagination parameters for list queries.
type PageRequest struct {
	MaxResults int
	Page       int
}

// Limit returns the effective page size, clamped to [1, 200] with a default of 50.
func (p PageRequest) Limit() int {
	if p.MaxResults <= 0 {
		return 50
	}
	if p.MaxResults > 200 {
		return 200
	}
	return p.MaxResults
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
