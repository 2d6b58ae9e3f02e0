package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"dreamchain/blockchain"
	"dreamchain/models"
	"dreamchain/service"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const claimsKey contextKey = "claims"

// requestLogger logs one line per request with logrus
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestId": middleware.GetReqID(r.Context()),
		}).Info("HTTP request")
	})
}

// authenticate requires a valid bearer token and stores its claims on the context
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(w, r, service.ErrUnauthorized)
			return
		}

		claims, err := h.services.Auth.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *models.TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*models.TokenClaims)
	return claims
}

// requireWallet checks that the authenticated caller owns the wallet
func requireWallet(ctx context.Context, wallet string) error {
	claims := claimsFromContext(ctx)
	if claims == nil {
		return service.ErrUnauthorized
	}
	if !sameWallet(claims.WalletAddress, wallet) {
		return errForbidden
	}
	return nil
}

func sameWallet(a, b string) bool {
	a, b = blockchain.NormalizeAddress(a), blockchain.NormalizeAddress(b)
	return a != "" && strings.EqualFold(a, b)
}
