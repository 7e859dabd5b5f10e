package main

import (
	"time-tracker-backend/internal/aggregate"
	"time-tracker-backend/internal/model"
)

// DailyTotals is the body of GET /api/totals/daily.
type DailyTotals struct {
	DailyTotalHours float64                   `json:"dailyTotalHours"`
	ByCategory      []aggregate.CategoryHours `json:"byCategory"`
}

// WeeklyTotals is the body of GET /api/totals/weekly. WeekEnd is the last
// millisecond of the week, not the exclusive bound.
type WeeklyTotals struct {
	WeeklyTotalHours float64                   `json:"weeklyTotalHours"`
	ByCategory       []aggregate.CategoryHours `json:"byCategory"`
	WeekStart        string                    `json:"weekStart"`
	WeekEnd          string                    `json:"weekEnd"`
}

type PeriodSummary struct {
	TotalHours float64                   `json:"totalHours"`
	ByCategory []aggregate.CategoryHours `json:"byCategory"`
}

type WeekSummary struct {
	PeriodSummary
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`
}

// Dashboard combines the day and week views around a single date. Category
// breakdowns are sorted by hours, largest first.
type Dashboard struct {
	Date    string            `json:"date"`
	Daily   PeriodSummary     `json:"daily"`
	Weekly  WeekSummary       `json:"weekly"`
	Entries []model.TimeEntry `json:"entries"`
}

type dataResponse struct {
	Data any `json:"data"`
}

type legacyEntryResponse struct {
	Data            model.TimeEntry `json:"data"`
	DailyTotalHours float64         `json:"dailyTotalHours"`
}

type errorDetails struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

type errorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details *errorDetails `json:"details,omitempty"`
}
