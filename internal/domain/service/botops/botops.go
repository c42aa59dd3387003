// Package botops собирает операторские действия над ботами для REST API
// и Telegram-бота.
package botops

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"trade_exchange/internal/domain"
	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/exchange"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/logx"
)

const (
	DefaultResultsLimit = 50
	MaxResultsLimit     = 500
)

type Coordinator interface {
	Status() exchange.Status
}

type Waker interface {
	Wake(ctx context.Context, botName string) error
}

type BlacklistStore interface {
	Add(ctx context.Context, entry entity.BlacklistEntry) error
	Remove(ctx context.Context, botName string, steamID uint64) error
	List(ctx context.Context, botName string) ([]entity.BlacklistEntry, error)
}

type ResultStore interface {
	ListByBot(ctx context.Context, botName string, limit, offset int) ([]entity.TradeResult, error)
}

type StatsSource interface {
	Snapshot(botName string) entity.TradeStatistics
}

// BotStatus: состояние координатора вместе с накопленной статистикой.
type BotStatus struct {
	exchange.Status
	Stats entity.TradeStatistics
}

type Service struct {
	coordinators map[string]Coordinator
	waker        Waker
	blacklist    BlacklistStore
	results      ResultStore
	stats        StatsSource
}

func NewService(waker Waker, blacklist BlacklistStore, results ResultStore) *Service {
	return &Service{
		coordinators: make(map[string]Coordinator),
		waker:        waker,
		blacklist:    blacklist,
		results:      results,
	}
}

func (s *Service) WithCoordinator(botName string, coordinator Coordinator) *Service {
	s.coordinators[botName] = coordinator
	return s
}

func (s *Service) WithStats(stats StatsSource) *Service {
	s.stats = stats
	return s
}

// Bots возвращает имена ботов по алфавиту.
func (s *Service) Bots() []string {
	names := make([]string, 0, len(s.coordinators))
	for name := range s.coordinators {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (s *Service) coordinator(botName string) (Coordinator, error) {
	c, ok := s.coordinators[botName]
	if !ok {
		return nil, domain.NewError(errcodes.BotNotFound, fmt.Sprintf("bot %q not found", botName))
	}

	return c, nil
}

func (s *Service) Status(botName string) (BotStatus, error) {
	c, err := s.coordinator(botName)
	if err != nil {
		return BotStatus{}, err
	}

	status := BotStatus{Status: c.Status()}
	if s.stats != nil {
		status.Stats = s.stats.Snapshot(botName)
	}

	return status, nil
}

func (s *Service) StatusAll() []BotStatus {
	statuses := make([]BotStatus, 0, len(s.coordinators))

	for _, name := range s.Bots() {
		status, _ := s.Status(name)
		statuses = append(statuses, status)
	}

	return statuses
}

// Wake ставит бота в очередь на внеочередной проход.
func (s *Service) Wake(ctx context.Context, botName string) error {
	if _, err := s.coordinator(botName); err != nil {
		return err
	}

	if err := s.waker.Wake(ctx, botName); err != nil {
		return fmt.Errorf("wake %q: %w", botName, err)
	}

	logger(ctx).Info("bot woken by operator", slog.String(logx.FieldBot, botName))

	return nil
}

func (s *Service) Results(ctx context.Context, botName string, limit, offset int) ([]entity.TradeResult, error) {
	if _, err := s.coordinator(botName); err != nil {
		return nil, err
	}

	if limit == 0 {
		limit = DefaultResultsLimit
	}

	if limit < 0 || limit > MaxResultsLimit || offset < 0 {
		return nil, domain.NewError(errcodes.InvalidPaging, "invalid paging")
	}

	return s.results.ListByBot(ctx, botName, limit, offset) //nolint:wrapcheck
}

func (s *Service) Blacklist(ctx context.Context, botName string, steamID uint64, reason string) (entity.BlacklistEntry, error) {
	if _, err := s.coordinator(botName); err != nil {
		return entity.BlacklistEntry{}, err
	}

	if steamID == 0 {
		return entity.BlacklistEntry{}, domain.NewError(errcodes.InvalidSteamID, "steam id is required")
	}

	entry := entity.BlacklistEntry{
		BotName:   botName,
		SteamID:   steamID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.blacklist.Add(ctx, entry); err != nil {
		return entity.BlacklistEntry{}, fmt.Errorf("blacklist add: %w", err)
	}

	logger(ctx).Info("counterparty blacklisted",
		slog.String(logx.FieldBot, botName),
		slog.Uint64(logx.FieldCounterpartyID, steamID),
	)

	return entry, nil
}

func (s *Service) Unblacklist(ctx context.Context, botName string, steamID uint64) error {
	if _, err := s.coordinator(botName); err != nil {
		return err
	}

	if steamID == 0 {
		return domain.NewError(errcodes.InvalidSteamID, "steam id is required")
	}

	return s.blacklist.Remove(ctx, botName, steamID) //nolint:wrapcheck
}

func (s *Service) ListBlacklist(ctx context.Context, botName string) ([]entity.BlacklistEntry, error) {
	if _, err := s.coordinator(botName); err != nil {
		return nil, err
	}

	return s.blacklist.List(ctx, botName) //nolint:wrapcheck
}

// ParseSteamID разбирает SteamID64 из строки оператора.
func ParseSteamID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewError(errcodes.InvalidSteamID, fmt.Sprintf("invalid steam id %q", raw))
	}

	return id, nil
}
