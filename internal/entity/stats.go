package entity

// Period selects the time window for the stats endpoints.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodCustom:
		return true
	}
	return false
}

type StatsSummary struct {
	TotalReviewed            int     `json:"totalReviewed"`
	TotalReviewedToday       int     `json:"totalReviewedToday"`
	TotalReviewedThisWeek    int     `json:"totalReviewedThisWeek"`
	TotalReviewedThisMonth   int     `json:"totalReviewedThisMonth"`
	ApprovedPercentage       float64 `json:"approvedPercentage"`
	RejectedPercentage       float64 `json:"rejectedPercentage"`
	RequestChangesPercentage float64 `json:"requestChangesPercentage"`
	AverageReviewTime        float64 `json:"averageReviewTime"`
}

// ActivityPoint is one day on the activity chart.
type ActivityPoint struct {
	Date           string `json:"date"`
	Approved       int    `json:"approved"`
	Rejected       int    `json:"rejected"`
	RequestChanges int    `json:"requestChanges"`
}

type DecisionsBreakdown struct {
	Approved       int `json:"approved"`
	Rejected       int `json:"rejected"`
	RequestChanges int `json:"requestChanges"`
}

type ModeratorStats struct {
	ApprovalRate      float64 `json:"approvalRate"`
	AverageReviewTime float64 `json:"averageReviewTime"`
	TodayReviewed     int     `json:"todayReviewed"`
	ThisWeekReviewed  int     `json:"thisWeekReviewed"`
	ThisMonthReviewed int     `json:"thisMonthReviewed"`
	TotalReviewed     int     `json:"totalReviewed"`
}

type Moderator struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	Permissions []string       `json:"permissions"`
	Statistics  ModeratorStats `json:"statistics"`
}
