package contextx

import (
	"context"
	"fmt"
)

type BotName string

type contextKeyBotName struct{}

func (b BotName) String() string {
	return string(b)
}

func WithBotName(ctx context.Context, botName BotName) context.Context {
	return context.WithValue(ctx, contextKeyBotName{}, botName)
}

func BotNameFromContext(ctx context.Context) (BotName, error) {
	botName, ok := ctx.Value(contextKeyBotName{}).(BotName)
	if !ok {
		return "", fmt.Errorf("bot name: %w", ErrNoValue)
	}

	return botName, nil
}
