package middleware

import (
	"context"
	"net/http"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/apierr"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

type contextKey string

const participantContextKey contextKey = "participant"

// IdentityHeader carries the caller's participant id. The front door
// (bot or gateway) resolves the real identity and sets this header.
const IdentityHeader = "X-Participant-Id"

// Identity creates middleware that loads the calling participant from
// the identity header and puts it in the request context
func Identity(store storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(IdentityHeader)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			p, err := store.GetParticipant(r.Context(), model.ParticipantID(id))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), participantContextKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetParticipant returns the calling participant from the request context
func GetParticipant(ctx context.Context) *model.Participant {
	p, _ := ctx.Value(participantContextKey).(*model.Participant)
	return p
}

// MustGetParticipant returns the calling participant or panics
func MustGetParticipant(ctx context.Context) *model.Participant {
	p := GetParticipant(ctx)
	if p == nil {
		panic("no participant in context - identity middleware not applied?")
	}
	return p
}
