package entity

// AdStatus is the ad lifecycle status. The upstream API reports "draft" for ads
// returned for rework; the dashboard treats it as "pending" (display alias only).
type AdStatus string

const (
	StatusPending  AdStatus = "pending"
	StatusApproved AdStatus = "approved"
	StatusRejected AdStatus = "rejected"
	StatusDraft    AdStatus = "draft"
)

// Normalize maps the server's "draft" to "pending" for display purposes.
func (s AdStatus) Normalize() AdStatus {
	if s == StatusDraft {
		return StatusPending
	}
	return s
}

func (s AdStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDraft:
		return true
	}
	return false
}

// Label returns the Russian badge label shown for the status.
func (s AdStatus) Label() string {
	switch s {
	case StatusPending:
		return "На модерации"
	case StatusApproved:
		return "Одобрено"
	case StatusRejected:
		return "Отклонено"
	case StatusDraft:
		return "Черновик"
	}
	return string(s)
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Label() string {
	switch p {
	case PriorityNormal:
		return "Обычный"
	case PriorityUrgent:
		return "Срочный"
	}
	return string(p)
}

// ModerationAction identifies a moderation decision in the history.
type ModerationAction string

const (
	ActionApproved       ModerationAction = "approved"
	ActionRejected       ModerationAction = "rejected"
	ActionRequestChanges ModerationAction = "requestChanges"
)

func (a ModerationAction) Valid() bool {
	switch a {
	case ActionApproved, ActionRejected, ActionRequestChanges:
		return true
	}
	return false
}

// ModerationReasons are the fixed reason templates accepted by the upstream API
// for reject and request-changes calls.
var ModerationReasons = []string{
	"Запрещенный товар",
	"Неверная категория",
	"Некорректное описание",
	"Проблемы с фото",
	"Подозрение на мошенничество",
	"Другое",
}

func ValidReason(reason string) bool {
	for _, r := range ModerationReasons {
		if r == reason {
			return true
		}
	}
	return false
}
