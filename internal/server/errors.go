package server

import (
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"trade_exchange/internal/domain"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/httpx/reply"
)

//nolint:gochecknoglobals
var statusByCode = map[failure.ErrorCode]int{
	errcodes.BotNotFound:            http.StatusNotFound,
	errcodes.BlacklistEntryNotFound: http.StatusNotFound,
	errcodes.InvalidSteamID:         http.StatusBadRequest,
	errcodes.InvalidOfferID:         http.StatusBadRequest,
	errcodes.InvalidPaging:          http.StatusBadRequest,
	errcodes.InvalidTradeInput:      http.StatusBadRequest,
	errcodes.TradingLockTimeout:     http.StatusConflict,
	errcodes.GatewayUnavailable:     http.StatusBadGateway,
	errcodes.GatewayBadResponse:     http.StatusBadGateway,
}

func invalidArgument(message string) error {
	return failure.NewInvalidArgumentError(
		message,
		failure.WithCode(errcodes.ValidationError),
		failure.WithDescription(message),
	)
}

// replyError отвечает по коду доменной ошибки, остальное отдаёт reply.Error.
func replyError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := domain.GetCode(err)
	if !ok {
		reply.Error(r.Context(), w, err)
		return
	}

	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	reply.Fail(r.Context(), w, status, code, err)
}
