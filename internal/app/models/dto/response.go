package dto

import "time"

// APIResponse is the envelope every successful JSON endpoint returns
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// PaginationInfo describes the page returned by a paginated listing
type PaginationInfo struct {
	CurrentPage int   `json:"current_page" example:"1"`
	TotalPages  int   `json:"total_pages" example:"3"`
	PageSize    int   `json:"page_size" example:"10"`
	TotalItems  int64 `json:"total_items" example:"27"`
}

// SuccessResponse represents a message-only payload
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// NewAPIResponse wraps data in a successful envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPaginatedResponse wraps a page of data together with its pagination info
func NewPaginatedResponse(data interface{}, pagination PaginationInfo) APIResponse {
	resp := NewAPIResponse(data)
	resp.Pagination = &pagination
	return resp
}

// NewMessageResponse wraps a plain message
func NewMessageResponse(message string) APIResponse {
	return NewAPIResponse(SuccessResponse{Message: message})
}
