package server

import (
	"net/http"

	"groovy/dto"
)

// 艺术家处理器

func (h *APIHandler) ListArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.svc.Artists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.svc.Artists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// SearchArtistsHandler 按名称搜索, name 为空时返回全部
func (h *APIHandler) SearchArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.svc.Artists.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

func (h *APIHandler) CreateArtistHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.ArtistDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.svc.Artists.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (h *APIHandler) UpdateArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.ArtistDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	artist, err := h.svc.Artists.Update(r.Context(), principal(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (h *APIHandler) DeleteArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Artists.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
