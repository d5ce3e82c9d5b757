package server

import (
	"net/http"

	"groovy/core/apperr"
	"groovy/dto"
)

// 播放列表处理器

func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.svc.Playlists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.Playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *APIHandler) ListUserPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlists, err := h.svc.Playlists.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *APIHandler) SearchPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := r.URL.Query()["name"]
	if !ok {
		writeError(w, r, apperr.BadRequest("Required request parameter 'name' is not present"))
		return
	}
	playlists, err := h.svc.Playlists.Search(r.Context(), name[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaylistDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.Playlists.Create(r.Context(), principal(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.PlaylistDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.Playlists.Update(r.Context(), principal(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Playlists.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPlaylistSongHandler 添加歌曲到播放列表
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, err := playlistSongIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.Playlists.AddSong(r.Context(), principal(r), playlistID, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// RemovePlaylistSongHandler 从播放列表移除歌曲
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, songID, err := playlistSongIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	playlist, err := h.svc.Playlists.RemoveSong(r.Context(), principal(r), playlistID, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func playlistSongIDs(r *http.Request) (int64, int64, error) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		return 0, 0, err
	}
	songID, err := pathID(r, "songId")
	if err != nil {
		return 0, 0, err
	}
	return playlistID, songID, nil
}
