// Package service собирает поток событий чата в согласованные переходы
// сделок: верификация -> сессия -> lifecycle -> реестр -> исходящие
// инструкции.
package service

import (
	"context"
	"fmt"

	"tg_escrow/internal/domain"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/internal/domain/lifecycle"
	"tg_escrow/internal/domain/session"
	"tg_escrow/pkg/errcodes"
)

type DealRegistry interface {
	Create(initiator int64) (entity.Deal, error)
	GetByID(id string) (entity.Deal, error)
	GetActiveByUser(userID int64) (entity.Deal, error)
	Mutate(id string, fn func(*entity.Deal) error) (entity.Deal, error)
	ListAll() []entity.Deal
}

type FormTracker interface {
	StartForm(userID int64, dealID string) error
	SubmitAnswer(userID int64, text string) (session.Answer, error)
	Clear(userID int64)
	SetPending(userID int64, op entity.PendingOp)
	TakePending(userID int64) entity.PendingOp
}

// VerificationGate — внешний коллаборатор: одноразовый код первого контакта.
// Событие непроверенного пользователя до ядра не доходит.
type VerificationGate interface {
	IsVerified(userID int64) bool
}

// BroadcastQueue — внешняя доставка рассылки (fan-out вне ядра).
type BroadcastQueue interface {
	Enqueue(ctx context.Context, recipients []int64, text string) error
}

type Analytics struct {
	Total     int
	Pending   int
	Claimed   int
	Completed int
}

type DealService struct {
	registry DealRegistry
	tracker  FormTracker
	gate     VerificationGate
	queue    BroadcastQueue
}

func NewDealService(
	registry DealRegistry,
	tracker FormTracker,
	gate VerificationGate,
	queue BroadcastQueue,
) *DealService {
	return &DealService{
		registry: registry,
		tracker:  tracker,
		gate:     gate,
		queue:    queue,
	}
}

func (s *DealService) checkVerified(userID int64) error {
	if !s.gate.IsVerified(userID) {
		return domain.NewError(errcodes.UserNotVerified,
			fmt.Sprintf("user %d has not passed verification", userID))
	}

	return nil
}

// StartDeal создаёт сделку и открывает анкету. Активная анкета
// не перетирается: пользователь сначала заканчивает текущую.
func (s *DealService) StartDeal(ctx context.Context, userID int64) ([]Instruction, error) {
	if err := s.checkVerified(userID); err != nil {
		return nil, err
	}

	if active, err := s.registry.GetActiveByUser(userID); err == nil {
		return nil, domain.NewError(errcodes.SessionAlreadyActive,
			fmt.Sprintf("user %d is already filling deal %s", userID, active.ID))
	}

	deal, err := s.registry.Create(userID)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.StartForm(userID, deal.ID); err != nil {
		return nil, err
	}

	logger(ctx).Info("deal started", "deal_id", deal.ID, "user_id", userID)

	return []Instruction{prompt(userID, Prompts[0])}, nil
}

// SubmitText — свободный текст пользователя: сначала отложенные операции
// (broadcast), затем активная анкета. Текст вне сессии — NoActiveSession.
func (s *DealService) SubmitText(ctx context.Context, userID int64, text string) ([]Instruction, error) {
	if err := s.checkVerified(userID); err != nil {
		return nil, err
	}

	if op := s.tracker.TakePending(userID); op == entity.PendingBroadcast {
		return s.broadcast(ctx, userID, text)
	}

	answer, err := s.tracker.SubmitAnswer(userID, text)
	if err != nil {
		return nil, err
	}

	deal, err := s.registry.Mutate(answer.DealID, func(d *entity.Deal) error {
		if err := lifecycle.RecordField(d, answer.Field, text); err != nil {
			return err
		}

		if answer.Done {
			return lifecycle.CompleteForm(d)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !answer.Done {
		return []Instruction{prompt(userID, Prompts[answer.NextStep])}, nil
	}

	logger(ctx).Info("deal form completed", "deal_id", deal.ID, "user_id", userID)

	return []Instruction{
		group(dealCard(deal),
			Action{Label: "✅ Seller Agree", Data: "agree_seller_" + deal.ID},
			Action{Label: "✅ Buyer Agree", Data: "agree_buyer_" + deal.ID},
		),
		reply(userID, msgDealPosted),
	}, nil
}

// Confirm фиксирует согласие стороны. Уведомление владельцу уходит ровно
// один раз — на переходе в both_confirmed.
func (s *DealService) Confirm(ctx context.Context, userID int64, identity string, role entity.Role, dealID string) ([]Instruction, error) {
	if err := s.checkVerified(userID); err != nil {
		return nil, err
	}

	var both bool

	deal, err := s.registry.Mutate(dealID, func(d *entity.Deal) error {
		_, b, err := lifecycle.Confirm(d, role, identity)
		both = b

		return err
	})
	if err != nil {
		return nil, err
	}

	if !both {
		return []Instruction{group(confirmedStatus(role))}, nil
	}

	logger(ctx).Info("deal fully confirmed", "deal_id", deal.ID)

	return []Instruction{
		group(msgBothConfirmed),
		owner(claimRequest(deal.ID),
			Action{
				Label: fmt.Sprintf("🚀 Claim Deal (%s)", deal.ID),
				Data:  "claim_" + deal.ID,
			},
		),
	}, nil
}

// Claim — админ берёт сделку в работу. Выигрывает первый; остальным —
// AlreadyClaimed с именем успевшего.
func (s *DealService) Claim(ctx context.Context, adminID int64, admin string, dealID string) ([]Instruction, error) {
	if err := s.checkVerified(adminID); err != nil {
		return nil, err
	}

	deal, err := s.registry.Mutate(dealID, func(d *entity.Deal) error {
		return lifecycle.Claim(d, admin)
	})
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("deal claimed", "deal_id", deal.ID, "admin", admin)

	return []Instruction{
		reply(adminID, claimedReply(deal.ID, deal.ClaimedBy)),
		group(claimedAnnounce(deal.ID, deal.ClaimedBy)),
	}, nil
}

// Resolve — внешнее событие расчёта (админский API), закрывает сделку.
func (s *DealService) Resolve(ctx context.Context, dealID string, outcome entity.Outcome) (entity.Deal, error) {
	deal, err := s.registry.Mutate(dealID, func(d *entity.Deal) error {
		return lifecycle.Resolve(d, outcome)
	})
	if err != nil {
		return entity.Deal{}, err
	}

	logger(ctx).Info("deal resolved", "deal_id", deal.ID, "outcome", deal.Outcome)

	return deal, nil
}

// Search возвращает сделку по ID или DealNotFound. Никаких частичных записей.
func (s *DealService) Search(ctx context.Context, userID int64, dealID string) ([]Instruction, error) {
	if err := s.checkVerified(userID); err != nil {
		return nil, err
	}

	deal, err := s.registry.GetByID(dealID)
	if err != nil {
		return nil, err
	}

	return []Instruction{reply(userID, dealSummary(deal))}, nil
}

// Analytics считает сводку по снапшоту реестра.
func (s *DealService) Analytics(_ context.Context) Analytics {
	var a Analytics

	for _, d := range s.registry.ListAll() {
		a.Total++

		switch d.State {
		case entity.StatePending, entity.StateSellerConfirmed, entity.StateBuyerConfirmed, entity.StateBothConfirmed:
			a.Pending++
		case entity.StateClaimed:
			a.Claimed++
		case entity.StateResolved:
			a.Completed++
		}
	}

	return a
}

// RequestBroadcast ставит владельцу слот: следующий его текст уйдёт рассылкой.
func (s *DealService) RequestBroadcast(_ context.Context, userID int64) []Instruction {
	s.tracker.SetPending(userID, entity.PendingBroadcast)

	return []Instruction{reply(userID, "📢 Send your broadcast message:")}
}

func (s *DealService) broadcast(ctx context.Context, userID int64, text string) ([]Instruction, error) {
	seen := make(map[int64]struct{})

	var recipients []int64

	for _, d := range s.registry.ListAll() {
		if _, ok := seen[d.Initiator]; ok {
			continue
		}

		seen[d.Initiator] = struct{}{}
		recipients = append(recipients, d.Initiator)
	}

	if err := s.queue.Enqueue(ctx, recipients, text); err != nil {
		return nil, fmt.Errorf("enqueue broadcast: %w", err)
	}

	logger(ctx).Info("broadcast enqueued", "recipients", len(recipients))

	return []Instruction{reply(userID, msgBroadcastSent)}, nil
}

// GetByID — прямой доступ для админского API.
func (s *DealService) GetByID(_ context.Context, dealID string) (entity.Deal, error) {
	return s.registry.GetByID(dealID)
}

// List — стабильный снапшот для админского API.
func (s *DealService) List(_ context.Context) []entity.Deal {
	return s.registry.ListAll()
}
