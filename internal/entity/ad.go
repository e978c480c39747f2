package entity

import "time"

// Seller is the ad owner as reported by the moderation API.
type Seller struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Rating       string `json:"rating"`
	RegisteredAt string `json:"registeredAt"`
	TotalAds     int    `json:"totalAds"`
}

// ModerationHistoryEntry is an append-only record of a moderation decision.
// The upstream API creates one on every approve/reject/request-changes call.
type ModerationHistoryEntry struct {
	ID            int64            `json:"id"`
	Action        ModerationAction `json:"action"`
	Reason        string           `json:"reason,omitempty"`
	Comment       string           `json:"comment,omitempty"`
	ModeratorID   int64            `json:"moderatorId"`
	ModeratorName string           `json:"moderatorName"`
	Timestamp     time.Time        `json:"timestamp"`
}

type Advertisement struct {
	ID                int64                    `json:"id"`
	Title             string                   `json:"title"`
	Price             float64                  `json:"price"`
	Category          string                   `json:"category"`
	CategoryID        int64                    `json:"categoryId"`
	Description       string                   `json:"description"`
	Images            []string                 `json:"images"`
	Status            AdStatus                 `json:"status"`
	Priority          Priority                 `json:"priority"`
	Seller            Seller                   `json:"seller"`
	Characteristics   map[string]string        `json:"characteristics"`
	ModerationHistory []ModerationHistoryEntry `json:"moderationHistory"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

// AdsList is one page of the ads listing.
type AdsList struct {
	Ads        []Advertisement `json:"ads"`
	Pagination Pagination      `json:"pagination"`
}

// CategoryOption backs the category select on the list page.
type CategoryOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
