package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/service/botops"
	"trade_exchange/pkg/httpx/reply"
	"trade_exchange/pkg/httpx/req"
	"trade_exchange/pkg/rest"
)

type botService interface {
	Status(botName string) (botops.BotStatus, error)
	StatusAll() []botops.BotStatus
	Wake(ctx context.Context, botName string) error
	Results(ctx context.Context, botName string, limit, offset int) ([]entity.TradeResult, error)
	Blacklist(ctx context.Context, botName string, steamID uint64, reason string) (entity.BlacklistEntry, error)
	Unblacklist(ctx context.Context, botName string, steamID uint64) error
	ListBlacklist(ctx context.Context, botName string) ([]entity.BlacklistEntry, error)
}

// Server: операторский API над ботами.
type Server struct {
	bots     botService
	apiToken string
}

func NewServer(bots botService, apiToken string) Server {
	return Server{
		bots:     bots,
		apiToken: apiToken,
	}
}

func (s Server) getV1Bots(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, lo.Map(s.bots.StatusAll(), func(st botops.BotStatus, _ int) rest.BotStatus {
		return newRESTBotStatus(st)
	}))

	return nil
}

func (s Server) getV1Bot(w http.ResponseWriter, r *http.Request) error {
	status, err := s.bots.Status(chi.URLParam(r, "bot"))
	if err != nil {
		return fmt.Errorf("bots.Status: %w", err)
	}

	reply.JSON(r.Context(), w, http.StatusOK, newRESTBotStatus(status))

	return nil
}

func (s Server) postV1BotWake(w http.ResponseWriter, r *http.Request) error {
	if err := s.bots.Wake(r.Context(), chi.URLParam(r, "bot")); err != nil {
		return fmt.Errorf("bots.Wake: %w", err)
	}

	w.WriteHeader(http.StatusAccepted)

	return nil
}

func (s Server) getV1BotResults(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	offset, err := queryInt(r, "offset")
	if err != nil {
		return err
	}

	results, err := s.bots.Results(ctx, chi.URLParam(r, "bot"), limit, offset)
	if err != nil {
		return fmt.Errorf("bots.Results: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(results, newRESTTradeResult))

	return nil
}

func (s Server) getV1BotBlacklist(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	entries, err := s.bots.ListBlacklist(ctx, chi.URLParam(r, "bot"))
	if err != nil {
		return fmt.Errorf("bots.ListBlacklist: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(entries, newRESTBlacklistEntry))

	return nil
}

func (s Server) postV1BotBlacklist(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.BlacklistRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	steamID, err := botops.ParseSteamID(request.SteamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	entry, err := s.bots.Blacklist(ctx, chi.URLParam(r, "bot"), steamID, request.Reason)
	if err != nil {
		return fmt.Errorf("bots.Blacklist: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTBlacklistEntry(entry, 0))

	return nil
}

func (s Server) deleteV1BotBlacklist(w http.ResponseWriter, r *http.Request) error {
	steamID, err := botops.ParseSteamID(chi.URLParam(r, "steamID"))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.bots.Unblacklist(r.Context(), chi.URLParam(r, "bot"), steamID); err != nil {
		return fmt.Errorf("bots.Unblacklist: %w", err)
	}

	reply.OK(w)

	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidArgument(fmt.Sprintf("query %s must be an integer", name))
	}

	return v, nil
}
