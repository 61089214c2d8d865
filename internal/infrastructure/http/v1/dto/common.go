// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse carries the id of a newly created entity.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ListQuery contains common list query parameters.
type ListQuery struct {
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"includeDeleted"`
	OrderBy        string `form:"orderBy"`
	OrderDesc      bool   `form:"orderDesc"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// PeriodQuery is a date range in YYYY-MM-DD.
type PeriodQuery struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}
