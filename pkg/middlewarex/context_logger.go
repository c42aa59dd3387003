package middlewarex

import (
	"log/slog"
	"net/http"

	"trade_exchange/pkg/contextx"
	"trade_exchange/pkg/logx"
)

// ContextLogger кладёт в контекст запроса логгер с trace-id и адресом клиента.
// Ставится после TraceID.
func ContextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []any{
			slog.String(logx.FieldIP, r.RemoteAddr),
			slog.String(logx.FieldHTTPMethod, r.Method),
			slog.String(logx.FieldURL, r.URL.Path),
		}

		if traceID, err := contextx.TraceIDFromContext(ctx); err == nil {
			attrs = append(attrs, slog.String(logx.FieldTraceID, traceID.String()))
		}

		ctx = contextx.WithLogger(ctx, logger(ctx).With(attrs...))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
