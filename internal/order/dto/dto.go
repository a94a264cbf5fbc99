package dto

import (
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/model"
)

type OrderFilters struct {
	CustomerID int64
	Status     model.OrderStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// LineReceipt is a committed order line plus the stock it moved.
type LineReceipt struct {
	model.OrderLine
	StockBefore int `json:"stock_before"`
	StockAfter  int `json:"stock_after"`
}

type Receipt struct {
	Order *model.Order  `json:"order"`
	Lines []LineReceipt `json:"lines"`
}
