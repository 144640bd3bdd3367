// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

type Deal struct {
	ID                string            `json:"id"`
	Initiator         int64             `json:"initiator"`
	Fields            map[string]string `json:"fields"`
	State             string            `json:"state"`
	SellerConfirmedBy string            `json:"sellerConfirmedBy,omitempty"`
	BuyerConfirmedBy  string            `json:"buyerConfirmedBy,omitempty"`
	ClaimedBy         string            `json:"claimedBy,omitempty"`
	Outcome           string            `json:"outcome,omitempty"`
	CreatedAt         string            `json:"createdAt"`
}

type DealList struct {
	Deals []Deal `json:"deals"`
	Total int    `json:"total"`
}

type ResolveRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=released refunded"`
}

type Analytics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Claimed   int `json:"claimed"`
	Completed int `json:"completed"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
