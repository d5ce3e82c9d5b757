package server

import (
	"net/http"

	"groovy/core/apperr"
	"groovy/dto"
	"groovy/logger"
)

func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.svc.Albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	album, err := h.svc.Albums.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// ListArtistAlbumsHandler 获取艺术家的专辑
func (h *APIHandler) ListArtistAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := pathID(r, "artistId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	albums, err := h.svc.Albums.ListByArtist(r.Context(), artistID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// CreateAlbumHandler 创建专辑
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.AlbumDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	album, err := h.svc.Albums.Create(r.Context(), principal(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("专辑创建成功", logger.Int64("albumId", album.ID), logger.Int64("artistId", *album.ArtistID))
	writeJSON(w, http.StatusOK, album)
}

// UpdateAlbumHandler 更新专辑
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.AlbumDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	album, err := h.svc.Albums.Update(r.Context(), principal(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// DeleteAlbumHandler 删除专辑
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Albums.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCoverHandler 上传专辑封面, 返回保存的文件名
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	upload, file, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if upload == nil {
		writeError(w, r, apperr.BadRequest("Missing 'file' in form"))
		return
	}
	defer file.Close()

	filename, err := h.svc.Albums.UploadCover(r.Context(), principal(r), id, *upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, filename)
}
