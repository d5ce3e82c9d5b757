package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groovy/cache"
	"groovy/config"
	"groovy/core/auth"
	"groovy/core/events"
	"groovy/db"
	"groovy/logger"
	"groovy/model"
	"groovy/repository"
	"groovy/service"
	"groovy/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	svc      *service.Services
	store    *repository.Store
	files    storage.Storage
	hub      *events.Hub
	cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(svc *service.Services, store *repository.Store, files storage.Storage, hub *events.Hub, cfg *config.Config) *APIHandler {
	return &APIHandler{
		svc:   svc,
		store: store,
		files: files,
		hub:   hub,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter builds the complete HTTP handler.
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusNotFound, "No handler found for "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusMethodNotAllowed, "Request method '"+r.Method+"' is not supported")
	})
	router.Use(observeMiddleware)

	// 监控
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)

	// 公开接口
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/files/{filename}", h.FileHandler).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware)

	admin := []model.Role{model.RoleAdmin}
	creators := []model.Role{model.RoleAdmin, model.RoleArtist}

	// 用户
	api.HandleFunc("/users", requireRoles(h.ListUsersHandler, admin...)).Methods(http.MethodGet)
	api.HandleFunc("/users", requireRoles(h.CreateUserHandler, admin...)).Methods(http.MethodPost)
	api.HandleFunc("/users/me", h.CurrentUserHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUserHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.UpdateUserHandler).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", requireRoles(h.DeleteUserHandler, admin...)).Methods(http.MethodDelete)

	// 艺术家
	api.HandleFunc("/artists", h.ListArtistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists", requireRoles(h.CreateArtistHandler, admin...)).Methods(http.MethodPost)
	api.HandleFunc("/artists/search", h.SearchArtistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id:[0-9]+}", h.GetArtistHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id:[0-9]+}", requireRoles(h.UpdateArtistHandler, creators...)).Methods(http.MethodPut)
	api.HandleFunc("/artists/{id:[0-9]+}", requireRoles(h.DeleteArtistHandler, admin...)).Methods(http.MethodDelete)

	// 专辑
	api.HandleFunc("/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums", requireRoles(h.CreateAlbumHandler, creators...)).Methods(http.MethodPost)
	api.HandleFunc("/albums/artist/{artistId:[0-9]+}", h.ListArtistAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id:[0-9]+}", h.GetAlbumHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id:[0-9]+}", requireRoles(h.UpdateAlbumHandler, creators...)).Methods(http.MethodPut)
	api.HandleFunc("/albums/{id:[0-9]+}", requireRoles(h.DeleteAlbumHandler, creators...)).Methods(http.MethodDelete)
	api.HandleFunc("/albums/{id:[0-9]+}/cover", requireRoles(h.UploadCoverHandler, creators...)).Methods(http.MethodPost)

	// 歌曲
	api.HandleFunc("/songs", h.ListSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs", requireRoles(h.CreateSongHandler, creators...)).Methods(http.MethodPost)
	api.HandleFunc("/songs/search", h.SearchSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/album/{albumId:[0-9]+}", h.ListAlbumSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}", h.GetSongHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}", requireRoles(h.UpdateSongHandler, creators...)).Methods(http.MethodPut)
	api.HandleFunc("/songs/{id:[0-9]+}", requireRoles(h.DeleteSongHandler, creators...)).Methods(http.MethodDelete)
	api.HandleFunc("/songs/{id:[0-9]+}/stream", h.StreamSongHandler).Methods(http.MethodGet, http.MethodHead)

	// 播放列表
	api.HandleFunc("/playlists", h.ListPlaylistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.CreatePlaylistHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlists/search", h.SearchPlaylistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/user/{userId:[0-9]+}", h.ListUserPlaylistsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.GetPlaylistHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.UpdatePlaylistHandler).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{playlistId:[0-9]+}/songs/{songId:[0-9]+}", h.AddPlaylistSongHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{playlistId:[0-9]+}/songs/{songId:[0-9]+}", h.RemovePlaylistSongHandler).Methods(http.MethodDelete)

	// 收藏
	api.HandleFunc("/favorites", h.ListFavoritesHandler).Methods(http.MethodGet)
	api.HandleFunc("/favorites/status/{songId:[0-9]+}", h.FavoriteStatusHandler).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{songId:[0-9]+}", h.AddFavoriteHandler).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{songId:[0-9]+}", h.RemoveFavoriteHandler).Methods(http.MethodDelete)

	// 目录变更推送
	api.HandleFunc("/events", h.EventsHandler).Methods(http.MethodGet)

	return recoveryMiddleware(corsMiddleware(h.cfg.CORSOrigin)(router))
}

// Start wires every dependency from cfg and serves until SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := storage.New(cfg)
	if err != nil {
		return err
	}
	if err := files.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageBackend, err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	var catalog cache.Store = cache.Noop{}
	if cfg.RedisEnabled {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		catalog = cache.NewRedisStore(client, cfg.CacheTTL)
	}

	hub := events.NewHub()
	go hub.Run()
	defer hub.Stop()

	store := repository.NewStore(gdb)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	svc := service.New(store, files, tokens, catalog, hub, service.Options{AllowAdminSignup: cfg.AllowAdminSignup})

	if fs, ok := files.(*storage.FileSystem); ok && cfg.WatchUploads {
		watcher, err := storage.NewWatcher(fs.Root(), svc.Songs.FileRemoved)
		if err != nil {
			logger.Warn("upload directory watcher disabled", logger.ErrorField(err))
		} else {
			go watcher.Run(ctx)
		}
	}

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     NewRouter(NewAPIHandler(svc, store, files, hub, cfg)),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		// no WriteTimeout: audio streams and the event socket are long-lived
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr),
			logger.String("storage", cfg.StorageBackend), logger.Bool("redis", cfg.RedisEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
