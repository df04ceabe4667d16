package dto

import "time"

// PaginationMeta summarises pagination state for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// PlanCreateRequest is the payload for generating a new learning plan.
type PlanCreateRequest struct {
	Topic        string `json:"topic" validate:"required,min=2,max=200"`
	DurationDays int    `json:"duration_days" validate:"required,min=1,max=365"`
	Level        string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DailyTime    string `json:"daily_time" validate:"omitempty,max=64"`
}

// PlanProgressRequest marks a plan day as completed or not.
type PlanProgressRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// PlanListRequest captures list query params.
type PlanListRequest struct {
	Page     int
	PageSize int
	Search   string
	Sort     string
}

// PlanDayResponse is a plan day together with the learner's progress.
type PlanDayResponse struct {
	Day         int        `json:"day"`
	Title       string     `json:"title"`
	Subtopics   []string   `json:"subtopics"`
	Objectives  []string   `json:"objectives"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PlanResponse serializes a stored learning plan.
type PlanResponse struct {
	ID                string            `json:"id"`
	Topic             string            `json:"topic"`
	Level             string            `json:"level"`
	DailyTime         string            `json:"daily_time"`
	DurationDays      int               `json:"duration_days"`
	Title             string            `json:"title"`
	Overview          string            `json:"overview"`
	Days              []PlanDayResponse `json:"days"`
	CompletedDays     int               `json:"completed_days"`
	CompletionPercent float64           `json:"completion_percent"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// PlanSummaryResponse is the list representation of a plan.
type PlanSummaryResponse struct {
	ID                string    `json:"id"`
	Topic             string    `json:"topic"`
	Title             string    `json:"title"`
	Level             string    `json:"level"`
	TotalDays         int       `json:"total_days"`
	CompletedDays     int       `json:"completed_days"`
	CompletionPercent float64   `json:"completion_percent"`
	CreatedAt         time.Time `json:"created_at"`
}

// PlanListResult wraps paginated plans.
type PlanListResult struct {
	Items      []PlanSummaryResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
	CacheHit   bool                  `json:"cache_hit"`
}

// PlanEvent is published when a plan is generated or its progress changes.
type PlanEvent struct {
	Type       string    `json:"type"`
	PlanID     string    `json:"plan_id"`
	UserID     uint      `json:"user_id"`
	Topic      string    `json:"topic,omitempty"`
	Day        int       `json:"day,omitempty"`
	Completed  bool      `json:"completed,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
