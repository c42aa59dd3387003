package middleware_test

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"trade_exchange/internal/transport/bot/middleware"
)

func TestIsAdmin(t *testing.T) {
	rq := require.New(t)

	admins := []int64{1, 2}

	testCases := []struct {
		name   string
		update telego.Update
		want   bool
	}{
		{name: "Admin message", update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 2}}}, want: true},
		{name: "Stranger message", update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 3}}}},
		{name: "Channel post without sender", update: telego.Update{Message: &telego.Message{}}},
		{name: "Admin callback", update: telego.Update{CallbackQuery: &telego.CallbackQuery{From: telego.User{ID: 1}}}, want: true},
		{name: "Empty update", update: telego.Update{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.want, middleware.IsAdmin(tc.update, admins))
		})
	}
}
