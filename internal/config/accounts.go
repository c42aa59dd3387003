package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// Флаги tradingPreferences.
const (
	PreferenceAcceptDonations     = "AcceptDonations"
	PreferenceSteamTradeMatcher   = "SteamTradeMatcher"
	PreferenceMatchEverything     = "MatchEverything"
	PreferenceDontAcceptBotTrades = "DontAcceptBotTrades"
)

// Флаги botBehaviour.
const (
	BehaviourRejectInvalidTrades = "RejectInvalidTrades"
)

type Account struct {
	Name                   string           `json:"name" validate:"required,alphanum"`
	SteamID                uint64           `json:"steamId,string" validate:"required"`
	MasterIDs              []uint64         `json:"masterIds"`
	TradingPreferences     []string         `json:"tradingPreferences" validate:"dive,oneof=AcceptDonations SteamTradeMatcher MatchEverything DontAcceptBotTrades"`
	BotBehaviour           []string         `json:"botBehaviour" validate:"dive,oneof=RejectInvalidTrades"`
	MatchableTypes         []value.ItemType `json:"matchableTypes"`
	LootableTypes          []value.ItemType `json:"lootableTypes"`
	SendOnFarmingFinished  bool             `json:"sendOnFarmingFinished"`
	HasMobileAuthenticator bool             `json:"hasMobileAuthenticator"`
	ReputationFilter       bool             `json:"reputationFilter"`
}

func (a Account) HasPreference(flag string) bool {
	return slices.Contains(a.TradingPreferences, flag)
}

func (a Account) HasBehaviour(flag string) bool {
	return slices.Contains(a.BotBehaviour, flag)
}

// Policy собирает политику обменов бота из его настроек и глобальных.
func (a Account) Policy(trading Trading, reputationTimeout time.Duration) entity.TradingPolicy {
	return entity.TradingPolicy{
		AcceptDonations:       a.HasPreference(PreferenceAcceptDonations),
		AcceptBotTrades:       !a.HasPreference(PreferenceDontAcceptBotTrades),
		ReputationFilter:      a.ReputationFilter,
		TradeMatching:         a.HasPreference(PreferenceSteamTradeMatcher),
		MatchEverything:       a.HasPreference(PreferenceMatchEverything),
		RejectInvalidTrades:   a.HasBehaviour(BehaviourRejectInvalidTrades),
		MaxTradeHoldDays:      trading.MaxTradeHoldDays,
		MatchableTypes:        value.NewItemTypes(a.MatchableTypes...),
		LootableTypes:         value.NewItemTypes(a.LootableTypes...),
		SendOnFarmingFinished: a.SendOnFarmingFinished,
		ReputationTimeout:     reputationTimeout,
		VolatileAppIDs:        trading.VolatileApps(),
	}
}

// Accounts: все боты, которыми управляет процесс.
type Accounts []Account

func LoadAccounts(path string) (Accounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}

	return ParseAccounts(data)
}

func ParseAccounts(data []byte) (Accounts, error) {
	var accounts Accounts
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	if len(accounts) == 0 {
		return nil, errors.New("no accounts configured")
	}

	seen := make(map[string]struct{}, len(accounts))

	for _, a := range accounts {
		if err := validate.Struct(a); err != nil {
			return nil, fmt.Errorf("validate account %q: %w", a.Name, err)
		}

		if _, ok := seen[a.Name]; ok {
			return nil, fmt.Errorf("duplicate account %q", a.Name)
		}

		seen[a.Name] = struct{}{}

		if a.HasPreference(PreferenceSteamTradeMatcher) && len(a.MatchableTypes) == 0 {
			return nil, fmt.Errorf("account %q: matchableTypes required for %s", a.Name, PreferenceSteamTradeMatcher)
		}
	}

	return accounts, nil
}

func (a Accounts) Find(name string) (Account, bool) {
	for _, account := range a {
		if account.Name == name {
			return account, true
		}
	}

	return Account{}, false
}

// Access возвращает проверку прав контрагента относительно бота name.
func (a Accounts) Access(name string) AccountAccess {
	account, _ := a.Find(name)

	managed := make(map[uint64]struct{}, len(a))
	for _, other := range a {
		managed[other.SteamID] = struct{}{}
	}

	return AccountAccess{masters: account.MasterIDs, managed: managed}
}

type AccountAccess struct {
	masters []uint64
	managed map[uint64]struct{}
}

func (a AccountAccess) HasMasterAccess(counterpartyID uint64) bool {
	return slices.Contains(a.masters, counterpartyID)
}

func (a AccountAccess) IsManagedAccount(counterpartyID uint64) bool {
	_, ok := a.managed[counterpartyID]
	return ok
}
