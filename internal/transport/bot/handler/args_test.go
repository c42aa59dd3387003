package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trade_exchange/internal/domain"
	"trade_exchange/pkg/errcodes"
)

func TestParseBlacklistArgs(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		text       string
		withReason bool
		want       blacklistArgs
		wantUsage  bool
		wantCode   bool
	}{
		{name: "With reason", text: "/blacklist alpha 42 tried to scam us", withReason: true, want: blacklistArgs{bot: "alpha", steamID: 42, reason: "tried to scam us"}},
		{name: "Without reason", text: "/blacklist alpha 42", withReason: true, want: blacklistArgs{bot: "alpha", steamID: 42}},
		{name: "Unblacklist", text: "/unblacklist alpha 42", want: blacklistArgs{bot: "alpha", steamID: 42}},
		{name: "Unblacklist with extra args", text: "/unblacklist alpha 42 extra", wantUsage: true},
		{name: "Missing steam id", text: "/blacklist alpha", withReason: true, wantUsage: true},
		{name: "Bad steam id", text: "/blacklist alpha abc", withReason: true, wantCode: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			got, err := parseBlacklistArgs(tc.text, tc.withReason)

			switch {
			case tc.wantUsage:
				rq.ErrorIs(err, errUsage)
			case tc.wantCode:
				rq.True(domain.HasCode(err, errcodes.InvalidSteamID))
			default:
				rq.NoError(err)
				rq.Equal(tc.want, got)
			}
		})
	}
}

func TestBotArg(t *testing.T) {
	rq := require.New(t)

	bot, err := botArg("/wake alpha")
	rq.NoError(err)
	rq.Equal("alpha", bot)

	_, err = botArg("/wake")
	rq.ErrorIs(err, errUsage)

	_, err = botArg("/wake alpha beta")
	rq.ErrorIs(err, errUsage)
}
