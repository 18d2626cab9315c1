package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dialectdeck/ledger/internal/api/respond"
)

type actorKey struct{}

// ActorFrom returns the actor stored by Require, if any.
func ActorFrom(ctx context.Context) (*ActorInfo, bool) {
	a, ok := ctx.Value(actorKey{}).(*ActorInfo)
	return a, ok
}

// Require wraps next so that only callers authorized for operation reach it.
// OpenAuthorizer never inspects the header.
func Require(a Authorizer, operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var apiKey string
		if _, open := a.(OpenAuthorizer); !open {
			key, err := ExtractAPIKey(r)
			if err != nil {
				respond.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}
			apiKey = key
		}

		actor, err := a.Authorize(r.Context(), apiKey, operation)
		switch {
		case err == nil:
		case errors.Is(err, ErrForbidden):
			respond.WriteError(w, http.StatusForbidden, err.Error())
			return
		case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrInvalidAPIKey):
			log.Warn().Str("operation", operation).Str("path", r.URL.Path).Msg("Rejected admin request")
			respond.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		default:
			log.Error().Err(err).Str("operation", operation).Msg("Authorization failed")
			respond.WriteInternalError(w, "internal error")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	}
}
