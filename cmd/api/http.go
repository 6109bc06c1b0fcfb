package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// mediaVerifier accepts a signed download token or a session token.
type mediaVerifier interface {
	VerifyMedia(token, mediaID string) error
	VerifyToken(token string) (*auth.Claims, error)
}

// mediaURL is the download address of media id, signed with token.
func mediaURL(publicURL, id, token string) string {
	return publicURL + "/media/" + id + "?" + url.Values{"token": {token}}.Encode()
}

// newHTTPHandler serves media downloads, health and metrics.
func newHTTPHandler(media mediaStore, db pinger, keys mediaVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.With(requireMediaGrant(keys)).Get("/media/{id}", mediaHandler(media))
	r.Get("/healthz", healthHandler(db))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// requireMediaGrant lets a download through when the query carries a token
// signed for that file, or the request carries a bearer session.
func requireMediaGrant(keys mediaVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if token := r.URL.Query().Get("token"); token != "" {
				if err := keys.VerifyMedia(token, id); err != nil {
					log.Warn().Err(err).Str("id", id).Msg("media token rejected")
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
			if !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, err := keys.VerifyToken(strings.TrimSpace(token)); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mediaHandler(media mediaStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid media id", http.StatusBadRequest)
			return
		}
		f, err := media.Stat(r.Context(), id)
		if errors.Is(err, data.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("id", id.Hex()).Msg("stat media failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", f.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
		w.Header().Set("Cache-Control", "private, max-age=86400")
		if _, err := media.Download(r.Context(), id, w); err != nil {
			// headers are already out; nothing left to tell the client
			log.Error().Err(err).Str("id", id.Hex()).Msg("download media failed")
		}
	}
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
