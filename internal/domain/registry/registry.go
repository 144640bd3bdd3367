// Package registry — потокобезопасное хранилище сделок процесса.
// Владеемый экземпляр, без глобального состояния: создаётся на старте и
// внедряется во все компоненты.
package registry

import (
	"fmt"
	"sync"
	"time"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/pkg/errcodes"
)

// maxIDRetries ограничивает подбор суффикса при коллизии в одну миллисекунду.
const maxIDRetries = 64

type Registry struct {
	mu sync.Mutex

	byID map[string]*entity.Deal
	// Вторичный индекс: инициатор -> его сделка в статусе filling.
	// Убирает линейный поиск по всем сделкам.
	fillingByUser map[int64]*entity.Deal

	now func() time.Time
}

func New() *Registry {
	return &Registry{
		byID:          make(map[string]*entity.Deal),
		fillingByUser: make(map[int64]*entity.Deal),
		now:           time.Now,
	}
}

// WithClock подменяет источник времени. Для тестов генерации ID.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Create выделяет новый уникальный ID и вставляет сделку в статусе filling.
// ID производен от unix-времени в миллисекундах; коллизия в пределах одной
// миллисекунды разрешается суффиксом, а не игнорируется.
func (r *Registry) Create(initiator int64) (entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.allocateID()
	if err != nil {
		return entity.Deal{}, err
	}

	deal := &entity.Deal{
		ID:        id,
		Initiator: initiator,
		Fields:    make(map[string]string, len(entity.FieldNames)),
		State:     entity.StateFilling,
		CreatedAt: r.now(),
	}

	r.byID[id] = deal
	r.fillingByUser[initiator] = deal

	return deal.Clone(), nil
}

func (r *Registry) allocateID() (string, error) {
	base := fmt.Sprintf("DEAL%d", r.now().UnixMilli())

	if _, taken := r.byID[base]; !taken {
		return base, nil
	}

	for n := 1; n <= maxIDRetries; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if _, taken := r.byID[id]; !taken {
			return id, nil
		}
	}

	return "", domain.NewError(errcodes.DealIDSpaceExhausted,
		fmt.Sprintf("no free id after %d retries at %s", maxIDRetries, base))
}

// GetByID возвращает копию сделки.
func (r *Registry) GetByID(id string) (entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.byID[id]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound,
			fmt.Sprintf("deal %s not found", id))
	}

	return deal.Clone(), nil
}

// GetActiveByUser возвращает сделку пользователя в статусе filling.
func (r *Registry) GetActiveByUser(userID int64) (entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.fillingByUser[userID]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound,
			fmt.Sprintf("user %d has no active deal", userID))
	}

	return deal.Clone(), nil
}

// Mutate применяет fn к сделке под блокировкой. Две конкурентные мутации
// одной сделки не интерливятся; ошибка fn оставляет запись нетронутой.
func (r *Registry) Mutate(id string, fn func(*entity.Deal) error) (entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.byID[id]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound,
			fmt.Sprintf("deal %s not found", id))
	}

	// fn работает с копией: отвергнутое событие не должно оставить
	// полузаписанное состояние.
	next := deal.Clone()
	if err := fn(&next); err != nil {
		return deal.Clone(), err
	}

	if next.State != entity.StateFilling && deal.State == entity.StateFilling {
		delete(r.fillingByUser, deal.Initiator)
	}

	*deal = next

	return deal.Clone(), nil
}

// ListAll — стабильный снапшот всех сделок. Копии, не живые указатели.
func (r *Registry) ListAll() []entity.Deal {
	r.mu.Lock()
	defer r.mu.Unlock()

	deals := make([]entity.Deal, 0, len(r.byID))
	for _, deal := range r.byID {
		deals = append(deals, deal.Clone())
	}

	return deals
}

// Export — граница сохранения: плоский список записей для снапшота.
func (r *Registry) Export() []entity.Deal {
	return r.ListAll()
}

// Restore наполняет пустой реестр сохранёнными записями, восстанавливая
// оба индекса. Дубликат ID — ошибка, инварианты реестра важнее снапшота.
func (r *Registry) Restore(deals []entity.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deals {
		if _, taken := r.byID[d.ID]; taken {
			return domain.NewError(errcodes.DuplicateDealID,
				fmt.Sprintf("duplicate deal id %s in snapshot", d.ID))
		}

		deal := d.Clone()
		if deal.Fields == nil {
			deal.Fields = make(map[string]string, len(entity.FieldNames))
		}

		r.byID[deal.ID] = &deal

		if deal.State == entity.StateFilling {
			r.fillingByUser[deal.Initiator] = &deal
		}
	}

	return nil
}
