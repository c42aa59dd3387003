package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trade_exchange/pkg/contextx"
)

func TestBotName(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	var testBotNameEmpty contextx.BotName

	testBotNameNotEmpty := contextx.BotName("primary")

	botName, err := contextx.BotNameFromContext(ctx)
	rq.Equal(testBotNameEmpty, botName)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "bot name: no value in context")

	ctx = contextx.WithBotName(ctx, testBotNameNotEmpty)

	botName, err = contextx.BotNameFromContext(ctx)
	rq.Equal(testBotNameNotEmpty, botName)
	rq.NoError(err)
}
