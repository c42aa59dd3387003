package middlewarex

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/httpx/reply"
)

var errInvalidToken = errors.New("invalid bearer token")

// BearerToken пропускает только запросы с заданным токеном. Пустой токен
// отключает проверку.
func BearerToken(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				reply.Fail(r.Context(), w, http.StatusUnauthorized, errcodes.Unauthorized, errInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
