package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Коды модуля сделок (escrow).
	DealNotFound         failure.ErrorCode = "DealNotFound"         // Неизвестный ID сделки
	InvalidDealID        failure.ErrorCode = "InvalidDealID"        // Мусор вместо ID
	InvalidDealState     failure.ErrorCode = "InvalidDealState"     // Событие не подходит текущему статусу
	AlreadyConfirmed     failure.ErrorCode = "AlreadyConfirmed"     // Роль уже подтверждена другим пользователем
	AlreadyClaimed       failure.ErrorCode = "AlreadyClaimed"       // Сделку уже забрал другой админ
	DuplicateDealID      failure.ErrorCode = "DuplicateDealID"      // Коллизия при генерации ID
	DealIDSpaceExhausted failure.ErrorCode = "DealIDSpaceExhausted" // Не удалось выделить уникальный ID
	InvalidOutcome       failure.ErrorCode = "InvalidOutcome"       // Итог не released/refunded

	// Коды сессий и верификации.
	SessionAlreadyActive failure.ErrorCode = "SessionAlreadyActive"
	NoActiveSession      failure.ErrorCode = "NoActiveSession"
	UserNotVerified      failure.ErrorCode = "UserNotVerified"
)
