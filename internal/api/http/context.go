package http

import (
	"context"
	"net/http"
	"strconv"

	"karhubty-backend/internal/domain"

	"github.com/gorilla/mux"
)

type contextKey struct{}

var accountKey = contextKey{}

func withAccount(ctx context.Context, account domain.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the authenticated caller set by the auth middleware.
func AccountFromContext(ctx context.Context) (domain.Account, bool) {
	account, ok := ctx.Value(accountKey).(domain.Account)
	return account, ok
}

func mustAccount(r *http.Request) (domain.Account, error) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		return domain.Account{}, domain.Unauthorized("authentication required")
	}
	return account, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.BadRequest("invalid %s %q", name, raw)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequest("invalid %s %q", name, raw)
	}
	return v, nil
}
