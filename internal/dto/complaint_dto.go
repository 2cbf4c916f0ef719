package dto

import "github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ComplaintListResponse struct {
	Complaints []models.Complaint `json:"complaints"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Pages      int                `json:"pages"`
}
