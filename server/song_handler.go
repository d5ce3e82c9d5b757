package server

import (
	"net/http"
	"strings"

	"groovy/core/apperr"
	"groovy/dto"
	"groovy/logger"
)

func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.Songs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	song, err := h.svc.Songs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (h *APIHandler) ListAlbumSongsHandler(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "albumId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	songs, err := h.svc.Songs.ListByAlbum(r.Context(), albumID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// SearchSongsHandler 按标题搜索, title 必填
func (h *APIHandler) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	title, ok := r.URL.Query()["title"]
	if !ok {
		writeError(w, r, apperr.BadRequest("Required request parameter 'title' is not present"))
		return
	}
	songs, err := h.svc.Songs.Search(r.Context(), title[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// CreateSongHandler 创建歌曲
// Expected multipart parts:
// - song: JSON SongDto
// - audioFile: the audio file (optional)
// - customFilename: stored name for the audio file (optional)
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.SongDto
	found, err := jsonPart(r, "song", &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, apperr.BadRequest("Required part 'song' is not present"))
		return
	}
	audio, file, err := formFile(r, "audioFile")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	song, err := h.svc.Songs.Create(r.Context(), principal(r), req, audio, strings.TrimSpace(r.FormValue("customFilename")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("歌曲创建成功", logger.Int64("songId", song.ID), logger.String("file", song.FilePath))
	writeJSON(w, http.StatusOK, song)
}

// UpdateSongHandler 更新歌曲, 可选替换音频文件
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.SongDto
	if _, err := jsonPart(r, "song", &req); err != nil {
		writeError(w, r, err)
		return
	}
	audio, file, err := formFile(r, "audioFile")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	song, err := h.svc.Songs.Update(r.Context(), principal(r), id, req, audio)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Songs.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamSongHandler 播放歌曲音频
func (h *APIHandler) StreamSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, info, err := h.svc.Songs.OpenAudio(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	serveRange(w, r, f, info)
}
