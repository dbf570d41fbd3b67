package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-go/domkit/pkg/hub"
	"github.com/vango-go/domkit/pkg/quote"
)

type userKey struct{}

// requireAuth resolves the X-Auth-Token header, or the token query value
// for websocket upgrades, to a user id.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		id, err := quote.UserFromToken(token)
		if err != nil {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func userID(ctx context.Context) int64 {
	id, _ := ctx.Value(userKey{}).(int64)
	return id
}

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, quotes)
}

func (s *Server) getQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	q, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) createQuote(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePatch(w, r)
	if !ok {
		return
	}
	q, err := s.store.Create(r.Context(), userID(r.Context()), p)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish(r.Context(), quote.LabelCreate, q)
	writeData(w, http.StatusOK, q)
}

func (s *Server) updateQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	p, ok := decodePatch(w, r)
	if !ok {
		return
	}
	q, err := s.store.Update(r.Context(), userID(r.Context()), id, p)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish(r.Context(), quote.LabelUpdate, q)
	writeData(w, http.StatusOK, q)
}

func (s *Server) deleteQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := quoteID(w, r)
	if !ok {
		return
	}
	q, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish(r.Context(), quote.LabelDelete, q)
	writeData(w, http.StatusOK, q)
}

func (s *Server) publish(ctx context.Context, label string, q quote.Quote) {
	hub.Must(s.config.HubName).PublishContext(ctx, quote.Topic, label, q)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, quote.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("store error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func quoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return 0, false
	}
	return id, true
}

func decodePatch(w http.ResponseWriter, r *http.Request) (quote.Patch, bool) {
	var p quote.Patch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote body")
		return p, false
	}
	return p, true
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
