package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Arcano33sa/suitea33-sub002/api/responses"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
)

// Recoverer turns a handler panic into an INTERNAL_ERROR response. Snapshot
// builds recover their own faults, so reaching this is a bug in the HTTP
// layer itself.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic": fmt.Sprint(rec),
						"route": r.URL.Path,
						"stack": string(debug.Stack()),
					})
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
