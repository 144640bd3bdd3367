package entity

// Session — эфемерное состояние пользователя, заполняющего анкету.
// У пользователя не больше одной активной сессии.
type Session struct {
	UserID       int64  `json:"user_id"`
	ActiveDealID string `json:"active_deal_id,omitempty"`
	StepIndex    int    `json:"step_index"`
	Verified     bool   `json:"verified"`
}

// PendingOp — отложенная операция, ждущая следующего текста пользователя.
// Явный слот вместо одноразовой подписки на событие: параллельные
// администраторы не мешают друг другу.
type PendingOp string

const (
	PendingNone      PendingOp = ""
	PendingBroadcast PendingOp = "broadcast"
)
