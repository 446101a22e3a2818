// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// principalMode selects which token kinds an authenticated route accepts.
type principalMode int

const (
	modeUser principalMode = iota
	modeSeat
	modeEither
)

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// authenticate builds the middleware for a principal mode. On success the
// resolved principal is attached to the request context; handlers fetch
// it with principalOf.
func (s *Server) authenticate(mode principalMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondError(w, r, apperr.Unauthorized("missing bearer token"))
				return
			}

			var principal authz.Principal
			switch mode {
			case modeUser:
				claims, err := s.jwt.ValidateUserToken(token)
				if err != nil {
					respondError(w, r, apperr.New(apperr.CodeInvalidToken, "invalid or expired token"))
					return
				}
				principal = userPrincipal(claims)
			case modeSeat:
				claims, err := s.jwt.ValidateSeatToken(token)
				if err != nil {
					respondError(w, r, apperr.New(apperr.CodeInvalidToken, "invalid or expired token"))
					return
				}
				principal = seatPrincipal(claims)
			case modeEither:
				kind, uc, sc, err := s.jwt.ValidateEither(token)
				if err != nil {
					respondError(w, r, apperr.New(apperr.CodeInvalidToken, "invalid or expired token"))
					return
				}
				if kind == auth.KindUser {
					principal = userPrincipal(uc)
				} else {
					principal = seatPrincipal(sc)
				}
			}

			ctx := authz.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userPrincipal(claims *auth.UserClaims) authz.Principal {
	return authz.Principal{
		Kind:     authz.PrincipalUser,
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     models.UserRole(claims.Role),
	}
}

func seatPrincipal(claims *auth.SeatClaims) authz.Principal {
	return authz.Principal{
		Kind:       authz.PrincipalSeat,
		SeatID:     claims.SeatID,
		TableID:    claims.TableID,
		EventID:    claims.EventID,
		SeatNumber: claims.SeatNumber,
	}
}

// principalOf returns the principal the authenticate middleware attached.
func principalOf(r *http.Request) authz.Principal {
	p, _ := authz.PrincipalFromContext(r.Context())
	return p
}
