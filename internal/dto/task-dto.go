package dto

import (
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/shopspring/decimal"
)

type TaskStepInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address"`
	Order       int     `json:"order"`
}

type TaskCreateRequest struct {
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	BusinessID    uint            `json:"business_id"`
	Price         decimal.Decimal `json:"price"`
	EstimatedTime int             `json:"estimated_time"`
	StartDatetime time.Time       `json:"start_datetime"`
	Address       *string         `json:"address,omitempty"`
	Steps         []TaskStepInput `json:"steps"`
}

// TaskUpdateRequest is a partial admin edit.
type TaskUpdateRequest struct {
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	BusinessID    *uint            `json:"business_id,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	EstimatedTime *int             `json:"estimated_time,omitempty"`
	StartDatetime *time.Time       `json:"start_datetime,omitempty"`
	Address       *string          `json:"address,omitempty"`
	Status        *string          `json:"status,omitempty"`
}

// TaskStepUpdateRequest is a partial update: only the fields sent change.
type TaskStepUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`
	Status      *string `json:"status,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

type TaskApprovalResponse struct {
	Task    *domain.Task              `json:"task"`
	Earning *domain.WalletTransaction `json:"earning"`
}
