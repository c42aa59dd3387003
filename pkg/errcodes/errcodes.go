package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	Unauthorized        failure.ErrorCode = "Unauthorized"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Обмены
	BotNotFound                 failure.ErrorCode = "BotNotFound"
	InvalidBotName              failure.ErrorCode = "InvalidBotName"
	InvalidOfferID              failure.ErrorCode = "InvalidOfferID"
	InvalidSteamID              failure.ErrorCode = "InvalidSteamID"
	InvalidTradeInput           failure.ErrorCode = "InvalidTradeInput"           // Пустой или битый набор предметов
	InventoryInvariantViolation failure.ErrorCode = "InventoryInvariantViolation" // Отдаём больше, чем есть в инвентаре
	BlacklistEntryNotFound      failure.ErrorCode = "BlacklistEntryNotFound"
	TradingLockTimeout          failure.ErrorCode = "TradingLockTimeout"
	GatewayUnavailable          failure.ErrorCode = "GatewayUnavailable"
	GatewayBadResponse          failure.ErrorCode = "GatewayBadResponse"
)
