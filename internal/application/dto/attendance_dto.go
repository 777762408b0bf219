package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryResponse сводка по личному составу.
type SummaryResponse struct {
	Total          int                 `json:"total"`
	InUnit         int                 `json:"in_unit"`
	Away           int                 `json:"away"`
	PresenceRate   decimal.Decimal     `json:"presence_rate"`
	AwayByLocation map[string][]string `json:"away_by_location"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// JournalRequest фильтры журнала.
type JournalRequest struct {
	PageRequest
	Period string `query:"period"`
	Name   string `query:"name"`
	Action string `query:"action"`
}

// EventResponse запись журнала.
type EventResponse struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalResponse страница журнала.
type JournalResponse struct {
	Period string          `json:"period"`
	Count  int             `json:"count"`
	Events []EventResponse `json:"events"`
}
