package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"groovy/config"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/dto"
	"groovy/internal/testdb"
	"groovy/repository"
	"groovy/service"
	"groovy/storage"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	t   *testing.T
	hub *events.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewStore(testdb.New(t))
	files := storage.NewFileSystem(t.TempDir())
	require.NoError(t, files.Init(context.Background()))
	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	cfg := &config.Config{CORSOrigin: "*", MaxUploadBytes: 1 << 20}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	svc := service.New(store, files, tokens, nil, hub, service.Options{AllowAdminSignup: true})
	srv := httptest.NewServer(NewRouter(NewAPIHandler(svc, store, files, hub, cfg)))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t, hub: hub}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *http.Response {
	s.t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) json(method, path, token string, v interface{}) *http.Response {
	s.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, "application/json")
}

func (s *testServer) register(name, email, role string) dto.AuthResponse {
	s.t.Helper()
	resp := s.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	var out dto.AuthResponse
	decode(s.t, resp, &out)
	return out
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/api/health", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	decode(t, resp, &health)
	assert.Equal(t, "UP", health.Status)
	assert.Equal(t, "UP", health.Database)
	assert.False(t, health.Timestamp.IsZero())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/users/me", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = s.do(http.MethodGet, "/api/users/me", "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	reg := s.register("John Doe", "john@example.com", "")
	assert.Equal(t, "USER", string(reg.User.Role))

	resp = s.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "John Doe", "email": "john@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.json(http.MethodPost, "/api/auth/login", "", dto.AuthRequest{Email: "john@example.com", Password: "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "Invalid email or password", errBody.Message)
	assert.Equal(t, "/api/auth/login", errBody.Path)

	resp = s.json(http.MethodPost, "/api/auth/login", "", dto.AuthRequest{Email: "john@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.AuthResponse
	decode(t, resp, &login)

	resp = s.do(http.MethodGet, "/api/users/me", login.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserDto
	decode(t, resp, &me)
	assert.Equal(t, "john@example.com", me.Email)
	assert.Empty(t, me.Password)

	resp = s.do(http.MethodGet, "/api/users", login.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestValidationErrorBody(t *testing.T) {
	s := newTestServer(t)
	resp := s.json(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "", "email": "nope", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, http.StatusBadRequest, body.Status)
	fields := map[string]string{}
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Contains(t, fields, "name")
	assert.Equal(t, "must be a well-formed email address", fields["email"])

	resp = s.do(http.MethodPost, "/api/auth/login", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCatalogOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Admin User", "admin@example.com", "ADMIN")
	fan := s.register("Fan User", "fan@example.com", "")

	resp := s.json(http.MethodPost, "/api/artists", admin.Token, map[string]string{
		"name": "Miles Davis", "email": "miles@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artist dto.ArtistDto
	decode(t, resp, &artist)
	assert.Equal(t, "ARTIST", string(artist.Role))

	resp = s.json(http.MethodPost, "/api/albums", fan.Token, map[string]interface{}{"name": "Nope", "artistId": artist.ID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.json(http.MethodPost, "/api/albums", admin.Token, map[string]interface{}{"name": "Kind of Blue", "artistId": artist.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var album dto.AlbumDto
	decode(t, resp, &album)
	assert.Equal(t, "Miles Davis", album.ArtistName)
	albumPath := "/api/albums/" + strconv.FormatInt(album.ID, 10)

	body, ct := multipartBody(t, nil, "file", "front.PNG", "png-bytes")
	resp = s.do(http.MethodPost, albumPath+"/cover", admin.Token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "album"+strconv.FormatInt(album.ID, 10)+".png", readAll(t, resp))

	songJSON, _ := json.Marshal(map[string]interface{}{"title": "So What", "duration": 9.22, "albumId": album.ID})
	body, ct = multipartBody(t, map[string]string{"song": string(songJSON), "customFilename": "so-what.mp3"}, "audioFile", "take1.mp3", "0123456789")
	resp = s.do(http.MethodPost, "/api/songs", admin.Token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var song dto.SongDto
	decode(t, resp, &song)
	assert.Equal(t, "so-what.mp3", song.FilePath)
	assert.Equal(t, "Kind of Blue", song.AlbumName)
	songID := strconv.FormatInt(song.ID, 10)

	resp = s.do(http.MethodGet, "/api/songs/search", fan.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = s.do(http.MethodGet, "/api/songs/search?title=WHAT", fan.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []dto.SongDto
	decode(t, resp, &found)
	assert.Len(t, found, 1)

	resp = s.do(http.MethodDelete, albumPath, admin.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/favorites/"+songID, fan.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true\n", readAll(t, resp))
	resp = s.do(http.MethodPost, "/api/favorites/"+songID, fan.Token, nil, "")
	assert.Equal(t, "false\n", readAll(t, resp))
	resp = s.do(http.MethodGet, "/api/favorites/status/"+songID, fan.Token, nil, "")
	assert.Equal(t, "true\n", readAll(t, resp))
	resp = s.do(http.MethodPost, "/api/favorites/999", fan.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.json(http.MethodPost, "/api/playlists", fan.Token, map[string]interface{}{"name": "Late night", "userId": fan.User.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var playlist dto.PlaylistDto
	decode(t, resp, &playlist)
	resp = s.do(http.MethodPost, "/api/playlists/"+strconv.FormatInt(playlist.ID, 10)+"/songs/"+songID, fan.Token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &playlist)
	assert.Len(t, playlist.Songs, 1)

	resp = s.do(http.MethodDelete, "/api/songs/"+songID, fan.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(http.MethodDelete, "/api/songs/"+songID, admin.Token, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodGet, "/api/files/so-what.mp3", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/artists/404", fan.Token, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "Artist not found with id: 404", errBody.Message)
}

func TestStreamingRanges(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Admin User", "admin@example.com", "ADMIN")
	resp := s.json(http.MethodPost, "/api/artists", admin.Token, map[string]string{"name": "Nina Simone", "email": "nina@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artist dto.ArtistDto
	decode(t, resp, &artist)
	resp = s.json(http.MethodPost, "/api/albums", admin.Token, map[string]interface{}{"name": "Pastel Blues", "artistId": artist.ID})
	var album dto.AlbumDto
	decode(t, resp, &album)

	songJSON, _ := json.Marshal(map[string]interface{}{"title": "Sinnerman", "albumId": album.ID})
	body, ct := multipartBody(t, map[string]string{"song": string(songJSON)}, "audioFile", "sinnerman.mp3", "0123456789")
	resp = s.do(http.MethodPost, "/api/songs", admin.Token, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var song dto.SongDto
	decode(t, resp, &song)
	assert.True(t, strings.HasSuffix(song.FilePath, "_sinnerman.mp3"))

	get := func(path, rng string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+admin.Token)
		if rng != "" {
			req.Header.Set("Range", rng)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	filePath := "/api/files/" + song.FilePath
	resp = get(filePath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "10", resp.Header.Get("Content-Length"))
	assert.Equal(t, "0123456789", readAll(t, resp))

	resp = get(filePath, "bytes=2-5")
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 2-5/10", resp.Header.Get("Content-Range"))
	assert.Equal(t, "2345", readAll(t, resp))

	resp = get(filePath, "bytes=7-")
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "789", readAll(t, resp))

	resp = get(filePath, "bytes=-3")
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 7-9/10", resp.Header.Get("Content-Range"))

	resp = get(filePath, "bytes=8-100")
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 8-9/10", resp.Header.Get("Content-Range"))

	for _, bad := range []string{"bytes=10-", "bytes=0-1,3-4", "items=0-1", "bytes=5-2"} {
		resp = get(filePath, bad)
		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, resp.StatusCode, bad)
		assert.Equal(t, "bytes */10", resp.Header.Get("Content-Range"), bad)
	}

	resp = get("/api/songs/"+strconv.FormatInt(song.ID, 10)+"/stream", "bytes=0-0")
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "0", readAll(t, resp))

	resp = get("/api/files/missing.mp3", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		header string
		want   byteRange
		ok     bool
	}{
		{"bytes=0-99", byteRange{0, 99}, true},
		{"bytes=50-", byteRange{50, 99}, true},
		{"bytes=-10", byteRange{90, 99}, true},
		{"bytes=-500", byteRange{0, 99}, true},
		{"bytes=90-1000", byteRange{90, 99}, true},
		{"bytes=100-", byteRange{}, false},
		{"bytes=-0", byteRange{}, false},
		{"bytes=a-b", byteRange{}, false},
		{"bytes=1-2,4-5", byteRange{}, false},
		{"bytes 0-1", byteRange{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := parseRange(tt.header, 100)
			if !tt.ok {
				assert.ErrorIs(t, err, errUnsatisfiableRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodOptions, "/api/songs", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Range")
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/health", "", nil, "")

	resp := s.do(http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := readAll(t, resp)
	assert.Contains(t, text, `groovy_http_requests_total{method="GET",route="/api/health",status="200"}`)
	assert.Contains(t, text, "groovy_http_request_duration_seconds")
}

func TestEventsWebsocket(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Admin User", "admin@example.com", "ADMIN")

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/events?token=" + admin.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/api/events", nil)
	assert.Error(t, err, "anonymous subscribers are rejected")

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := s.json(http.MethodPost, "/api/artists", admin.Token, map[string]string{"name": "Nina Simone", "email": "nina@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var artist dto.ArtistDto
	decode(t, resp, &artist)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev events.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, events.Created, ev.Type)
	assert.Equal(t, events.EntityArtist, ev.Entity)
	assert.Equal(t, artist.ID, ev.ID)
}
