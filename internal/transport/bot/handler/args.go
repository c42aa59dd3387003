package handler

import (
	"errors"
	"strings"

	"trade_exchange/internal/domain/service/botops"
)

var errUsage = errors.New("usage")

// botArg: команда с одним аргументом: именем бота.
func botArg(text string) (string, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return "", errUsage
	}

	return parts[1], nil
}

type blacklistArgs struct {
	bot     string
	steamID uint64
	reason  string
}

// parseBlacklistArgs разбирает "/cmd bot steamId [причина...]".
func parseBlacklistArgs(text string, withReason bool) (blacklistArgs, error) {
	parts := strings.Fields(text)
	if len(parts) < 3 || (!withReason && len(parts) > 3) {
		return blacklistArgs{}, errUsage
	}

	steamID, err := botops.ParseSteamID(parts[2])
	if err != nil {
		return blacklistArgs{}, err
	}

	args := blacklistArgs{bot: parts[1], steamID: steamID}
	if withReason {
		args.reason = strings.Join(parts[3:], " ")
	}

	return args, nil
}
