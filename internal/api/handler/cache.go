package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/cache"
)

type InlineButtonResponse struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type CacheEntryResponse struct {
	Store       string                   `json:"store"`
	Key         string                   `json:"key"`
	Type        string                   `json:"type"`
	FileID      string                   `json:"file_id,omitempty"`
	FileIDs     []string                 `json:"file_ids,omitempty"`
	Caption     string                   `json:"caption"`
	ReplyMarkup [][]InlineButtonResponse `json:"reply_markup,omitempty"`
}

type CacheStatsResponse struct {
	Stores []StoreStatsResponse `json:"stores"`
}

type StoreStatsResponse struct {
	Store   string `json:"store"`
	Entries int    `json:"entries"`
}

// CacheHandler exposes read and invalidate operations on the content cache stores.
type CacheHandler struct {
	stores map[string]cache.MediaCache
}

// NewCacheHandler creates a new CacheHandler. stores is keyed by store name.
func NewCacheHandler(stores map[string]cache.MediaCache) *CacheHandler {
	return &CacheHandler{stores: stores}
}

// Stats handles GET /v1/cache
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.stores))
	for name := range h.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := CacheStatsResponse{Stores: make([]StoreStatsResponse, 0, len(names))}
	for _, name := range names {
		n, err := h.stores[name].Len(r.Context())
		if err != nil {
			h.storeError(w, name, "", err)
			return
		}
		resp.Stores = append(resp.Stores, StoreStatsResponse{Store: name, Entries: n})
	}

	JSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/cache/{store}?key=...
func (h *CacheHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, store, key, ok := h.target(w, r)
	if !ok {
		return
	}

	payload, err := store.Get(r.Context(), key)
	if err != nil {
		h.storeError(w, name, key, err)
		return
	}
	if payload == nil {
		Error(w, http.StatusNotFound, "not_found", "No fresh entry for this key")
		return
	}

	JSON(w, http.StatusOK, toCacheEntryResponse(name, key, *payload))
}

// Delete handles DELETE /v1/cache/{store}?key=...
func (h *CacheHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, store, key, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := store.Delete(r.Context(), key); err != nil {
		h.storeError(w, name, key, err)
		return
	}

	slog.Info("cache entry invalidated", "store", name, "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CacheHandler) target(w http.ResponseWriter, r *http.Request) (string, cache.MediaCache, string, bool) {
	name := chi.URLParam(r, "store")
	store, ok := h.stores[name]
	if !ok {
		Error(w, http.StatusNotFound, "unknown_store", "Store must be one of urls, content_ids")
		return "", nil, "", false
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		Error(w, http.StatusBadRequest, "invalid_key", "Query parameter key is required")
		return "", nil, "", false
	}

	return name, store, key, true
}

func (h *CacheHandler) storeError(w http.ResponseWriter, name, key string, err error) {
	switch {
	case errors.Is(err, cache.ErrEmptyKey):
		Error(w, http.StatusBadRequest, "invalid_key", err.Error())
	case errors.Is(err, cache.ErrStorageUnavailable):
		slog.Error("cache storage unavailable", "store", name, "key", key, "error", err)
		Error(w, http.StatusServiceUnavailable, "storage_unavailable", "Cache storage is unavailable")
	default:
		slog.Error("cache operation failed", "store", name, "key", key, "error", err)
		Error(w, http.StatusInternalServerError, "internal_error", "Cache operation failed")
	}
}

func toCacheEntryResponse(store, key string, p model.Payload) CacheEntryResponse {
	resp := CacheEntryResponse{
		Store:   store,
		Key:     key,
		Type:    p.Kind.String(),
		FileID:  p.FileID,
		FileIDs: p.FileIDs,
		Caption: p.Caption,
	}
	if p.ReplyMarkup != nil {
		for _, row := range p.ReplyMarkup.InlineKeyboard {
			buttons := make([]InlineButtonResponse, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, InlineButtonResponse{Text: b.Text, URL: b.URL})
			}
			resp.ReplyMarkup = append(resp.ReplyMarkup, buttons)
		}
	}
	return resp
}
