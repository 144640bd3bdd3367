package entity

import "time"

// DealState — статус сделки. Переходы только вперёд, см. lifecycle.
type DealState string

const (
	StateFilling         DealState = "filling"
	StatePending         DealState = "pending"
	StateSellerConfirmed DealState = "seller_confirmed"
	StateBuyerConfirmed  DealState = "buyer_confirmed"
	StateBothConfirmed   DealState = "both_confirmed"
	StateClaimed         DealState = "claimed"
	StateResolved        DealState = "resolved"
)

// Outcome — итог закрытой сделки.
type Outcome string

const (
	OutcomeReleased Outcome = "released"
	OutcomeRefunded Outcome = "refunded"
)

// Role сторона сделки, подтверждающая условия.
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// FieldNames — порядок сбора полей анкеты. Ответы мапятся позиционно.
var FieldNames = []string{"dealOf", "amount", "time", "bank", "seller", "buyer"}

type Deal struct {
	ID        string            `json:"id" db:"id"`
	Initiator int64             `json:"initiator" db:"initiator"`
	Fields    map[string]string `json:"fields" db:"-"`
	State     DealState         `json:"state" db:"state"`

	// Идентичности сторон; пустая строка — подтверждения ещё нет.
	// Однажды записанные не перезаписываются.
	SellerConfirmedBy string `json:"seller_confirmed_by,omitempty" db:"seller_confirmed_by"`
	BuyerConfirmedBy  string `json:"buyer_confirmed_by,omitempty" db:"buyer_confirmed_by"`
	ClaimedBy         string `json:"claimed_by,omitempty" db:"claimed_by"`

	Outcome   Outcome   `json:"outcome,omitempty" db:"outcome"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Clone возвращает независимую копию сделки: снапшоты реестра не должны
// делить мутабельную карту полей с живой записью.
func (d Deal) Clone() Deal {
	fields := make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}

	d.Fields = fields

	return d
}

// NextStep — индекс первого незаполненного поля анкеты. Поля заполняются
// строго по порядку, так что этого достаточно для восстановления сессии.
func (d Deal) NextStep() int {
	for i, name := range FieldNames {
		if d.Fields[name] == "" {
			return i
		}
	}

	return len(FieldNames)
}

// Complete — все шесть полей анкеты заполнены.
func (d Deal) Complete() bool {
	for _, name := range FieldNames {
		if d.Fields[name] == "" {
			return false
		}
	}

	return true
}

func (d Deal) Finished() bool {
	return d.State == StateResolved
}
