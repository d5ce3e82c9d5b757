package server

import (
	"context"
	"net/http"

	"groovy/core/auth"
)

// 收藏处理器, 总是作用于当前用户

func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.Favorites.List(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	h.favoriteAction(w, r, h.svc.Favorites.Add)
}

func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	h.favoriteAction(w, r, h.svc.Favorites.Remove)
}

func (h *APIHandler) FavoriteStatusHandler(w http.ResponseWriter, r *http.Request) {
	h.favoriteAction(w, r, h.svc.Favorites.IsFavorite)
}

// favoriteAction answers with the boolean the service returns.
func (h *APIHandler) favoriteAction(w http.ResponseWriter, r *http.Request, action func(context.Context, auth.Principal, int64) (bool, error)) {
	songID, err := pathID(r, "songId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := action(r.Context(), principal(r), songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}
