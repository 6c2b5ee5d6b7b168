package handler

import "time"

// EmployeeResponse is the client facing shape of an employee record
type EmployeeResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Name             string    `json:"name"`
	Designation      string    `json:"designation"`
	DOB              string    `json:"dob"`
	Address          string    `json:"address"`
	Image            string    `json:"image,omitempty"`
	ImageContentType string    `json:"imageContentType,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PageResponse is returned by page mode listings
type PageResponse struct {
	Records      []EmployeeResponse `json:"records"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	TotalRecords int                `json:"totalRecords"`
	TotalPages   int                `json:"totalPages"`
}

// DeleteResponse confirms a removal
type DeleteResponse struct {
	ID string `json:"id"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status string `json:"status"`
}
