package model

import "time"

type APIResponse struct {
	Success   bool      `json:"success"`
	Timestamp string    `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Meta      *Meta     `json:"meta,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page            int         `json:"page"`
	Limit           int         `json:"limit"`
	TotalItems      int         `json:"total_items"`
	TotalPages      int         `json:"total_pages"`
	HasNextPage     bool        `json:"has_next_page"`
	HasPreviousPage bool        `json:"has_previous_page"`
	Sort            []SortField `json:"sort,omitempty"`
}

func NewMeta(page int, limit int, totalItems int, sort []SortField) *Meta {
	totalPages := 0
	if totalItems > 0 && limit > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	return &Meta{
		Page:            page,
		Limit:           limit,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
		Sort:            sort,
	}
}

func SuccessResponse(data any, message string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   message,
		Data:      data,
	}
}

func PaginatedResponse(data any, meta *Meta, message string) *APIResponse {
	resp := SuccessResponse(data, message)
	resp.Meta = meta
	return resp
}

func ErrorResponse(code string, message string, details string) *APIResponse {
	return &APIResponse{
		Success:   false,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Error:     &APIError{Code: code, Message: message, Details: details},
	}
}
