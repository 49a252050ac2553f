package models

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for sorting: urgent first, low last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type WarrantyStatus string

const (
	WarrantyUnderWarranty WarrantyStatus = "under_warranty"
	WarrantyExpired       WarrantyStatus = "expired"
	WarrantyNotApplicable WarrantyStatus = "not_applicable"
)

// UserRef is the short user reference embedded in a request.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// MaintenanceRequest mirrors the ACI FORGE API representation of a ticket.
// Timestamps stay as ISO 8601 strings; they compare lexicographically.
type MaintenanceRequest struct {
	ID                      int            `json:"id"`
	Title                   string         `json:"title"`
	Description             string         `json:"description"`
	Priority                Priority       `json:"priority"`
	Status                  RequestStatus  `json:"status"`
	EquipmentName           string         `json:"equipment_name,omitempty"`
	Location                string         `json:"location,omitempty"`
	RequestedCompletionDate string         `json:"requested_completion_date,omitempty"`
	LastMaintenanceDate     string         `json:"last_maintenance_date,omitempty"`
	MaintenanceCycleDays    int            `json:"maintenance_cycle_days,omitempty"`
	WarrantyStatus          WarrantyStatus `json:"warranty_status,omitempty"`
	WarrantyExpiryDate      string         `json:"warranty_expiry_date,omitempty"`
	PartOrderList           string         `json:"part_order_list,omitempty"`
	Attachments             []string       `json:"attachments,omitempty"`
	CreatedAt               string         `json:"created_at"`
	UpdatedAt               string         `json:"updated_at,omitempty"`
	CompletedAt             string         `json:"completed_at,omitempty"`
	Submitter               UserRef        `json:"submitter"`
	CompletedBy             *UserRef       `json:"completed_by,omitempty"`
}

// MaintenanceRequestInput is the create payload (no id, no timestamps).
type MaintenanceRequestInput struct {
	Title                   string         `json:"title" binding:"required"`
	Description             string         `json:"description" binding:"required"`
	Priority                Priority       `json:"priority" binding:"required"`
	EquipmentName           string         `json:"equipment_name,omitempty"`
	Location                string         `json:"location,omitempty"`
	RequestedCompletionDate string         `json:"requested_completion_date,omitempty"`
	LastMaintenanceDate     string         `json:"last_maintenance_date,omitempty"`
	MaintenanceCycleDays    int            `json:"maintenance_cycle_days,omitempty"`
	WarrantyStatus          WarrantyStatus `json:"warranty_status,omitempty"`
	WarrantyExpiryDate      string         `json:"warranty_expiry_date,omitempty"`
	PartOrderList           string         `json:"part_order_list,omitempty"`
}

// Statistics is the pre-aggregated snapshot served by the remote API.
// Never computed locally.
type Statistics struct {
	TotalRequests     int `json:"total_requests"`
	PendingCount      int `json:"pending_count"`
	InProgressCount   int `json:"in_progress_count"`
	CompletedCount    int `json:"completed_count"`
	CancelledCount    int `json:"cancelled_count"`
	HighPriorityCount int `json:"high_priority_count"`
	UrgentCount       int `json:"urgent_count"`
}
