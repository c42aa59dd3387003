package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/logx"
)

var (
	ErrTradeHoldUnknown   = errors.New("trade hold unknown")
	ErrConfirmationFailed = errors.New("confirmation failed")
	ErrNothingToSend      = errors.New("nothing to send")
)

// BotSession: операции шлюза от имени одного бота.
type BotSession struct {
	client *Client
	name   string
}

func (s *BotSession) Name() string {
	return s.name
}

func (s *BotSession) path(parts ...string) string {
	return "/bots/" + url.PathEscape(s.name) + "/" + joinPath(parts)
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}

		out += url.PathEscape(p)
	}

	return out
}

// FetchActiveOffers возвращает полученные и отправленные офферы. Один и тот
// же оффер может прийти в обоих списках; дубли отсекает координатор.
func (s *BotSession) FetchActiveOffers(ctx context.Context) ([]entity.TradeOffer, error) {
	query := url.Values{"active_only": {"1"}, "get_received_offers": {"1"}, "get_sent_offers": {"1"}}

	var resp offersResponse
	if err := s.client.do(ctx, http.MethodGet, s.path("offers"), query, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch offers: %w", err)
	}

	offers := make([]entity.TradeOffer, 0, len(resp.Received)+len(resp.Sent))
	for _, d := range append(resp.Received, resp.Sent...) {
		offer, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("fetch offers: %w", err)
		}

		offers = append(offers, offer)
	}

	return offers, nil
}

func (s *BotSession) AcceptOffer(ctx context.Context, offerID uint64) (bool, error) {
	var resp acceptResponse

	err := s.client.do(ctx, http.MethodPost, s.path("offers", strconv.FormatUint(offerID, 10), "accept"), nil, nil, &resp)
	if err != nil {
		return false, fmt.Errorf("accept offer %d: %w", offerID, err)
	}

	return resp.NeedsMobileConfirmation, nil
}

func (s *BotSession) DeclineOffer(ctx context.Context, offerID uint64) error {
	err := s.client.do(ctx, http.MethodPost, s.path("offers", strconv.FormatUint(offerID, 10), "decline"), nil, nil, nil)
	if err != nil {
		return fmt.Errorf("decline offer %d: %w", offerID, err)
	}

	return nil
}

// FetchOwnInventory загружает предметы сообщества и фильтрует их на нашей стороне.
func (s *BotSession) FetchOwnInventory(ctx context.Context, filter func(entity.Item) bool) ([]entity.Item, error) {
	query := url.Values{
		"appid":     {strconv.FormatUint(uint64(entity.CommunityAppID), 10)},
		"contextid": {strconv.FormatUint(entity.CommunityContextID, 10)},
		"tradable":  {"1"},
	}

	var resp inventoryResponse
	if err := s.client.do(ctx, http.MethodGet, s.path("inventory"), query, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}

	items := toItems(resp.Items)
	if filter == nil {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		if filter(item) {
			filtered = append(filtered, item)
		}
	}

	return filtered, nil
}

func (s *BotSession) GetTradeHoldDuration(ctx context.Context, counterpartyID, offerID uint64) (uint8, error) {
	query := url.Values{
		"partner":      {strconv.FormatUint(counterpartyID, 10)},
		"tradeofferid": {strconv.FormatUint(offerID, 10)},
	}

	var resp tradeHoldResponse
	if err := s.client.do(ctx, http.MethodGet, s.path("trade-hold"), query, nil, &resp); err != nil {
		return 0, fmt.Errorf("trade hold: %w", err)
	}

	if resp.Days == nil {
		return 0, ErrTradeHoldUnknown
	}

	return *resp.Days, nil
}

// ConfirmTrades подтверждает офферы через мобильный аутентификатор шлюза.
func (s *BotSession) ConfirmTrades(ctx context.Context, offerIDs []uint64) error {
	req := confirmRequest{OfferIDs: make([]string, 0, len(offerIDs))}
	for _, id := range offerIDs {
		req.OfferIDs = append(req.OfferIDs, strconv.FormatUint(id, 10))
	}

	var resp confirmResponse
	if err := s.client.do(ctx, http.MethodPost, s.path("confirmations"), nil, req, &resp); err != nil {
		return fmt.Errorf("confirm trades: %w", err)
	}

	if !resp.Success {
		return ErrConfirmationFailed
	}

	return nil
}

// SendInventory отправляет recipient все предметы указанных типов.
func (s *BotSession) SendInventory(ctx context.Context, recipientID uint64, types value.ItemTypes) (int, error) {
	if recipientID == 0 || len(types) == 0 {
		return 0, domain.NewError(errcodes.InvalidTradeInput, "recipient and types are required")
	}

	req := sendInventoryRequest{RecipientID: strconv.FormatUint(recipientID, 10)}
	for t := range types {
		req.Types = append(req.Types, t.String())
	}

	var resp sendInventoryResponse
	if err := s.client.do(ctx, http.MethodPost, s.path("send-inventory"), nil, req, &resp); err != nil {
		return 0, fmt.Errorf("send inventory: %w", err)
	}

	if resp.Sent == 0 {
		return 0, ErrNothingToSend
	}

	logger(ctx).Info("inventory sent",
		slog.String(logx.FieldBot, s.name),
		slog.Uint64("recipient", recipientID),
		slog.Int("items", resp.Sent),
	)

	return resp.Sent, nil
}

func (s *BotSession) IsConnected(ctx context.Context) (bool, error) {
	var resp statusResponse
	if err := s.client.do(ctx, http.MethodGet, s.path("status"), nil, nil, &resp); err != nil {
		return false, fmt.Errorf("status: %w", err)
	}

	return resp.Connected, nil
}
