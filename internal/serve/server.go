package serve

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"ruesite/internal/domain/config"
	"ruesite/internal/ingest"
	"ruesite/internal/listing"
	"ruesite/internal/logging"
	"ruesite/internal/render"
	"sync"
	"time"
)

type Server struct {
	cfg    config.Config
	logger *zap.Logger

	loader *ingest.Loader
	theme  fs.FS
	tpl    render.Renderer
	md     *render.MarkdownRenderer

	// clients are the open dev reload streams.
	clientsMu sync.Mutex
	clients   map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := ingest.NewSource(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}
	theme := render.ThemeFS(cfg.Build.ThemeDir)
	tpl, err := render.NewTemplateRenderer(theme)
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		loader:  &ingest.Loader{Source: src, Names: ingest.NamesFrom(cfg.Data)},
		theme:   theme,
		tpl:     tpl,
		md:      render.NewMarkdownRenderer(),
		clients: make(map[chan string]struct{}),
	}, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler returns the routes, mounted under the configured base path.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// the reload stream must not be cut by the request timeout
	if s.cfg.Serve.Dev {
		r.Get("/dev/events", s.handleDevEvents)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", s.handleListing)
		r.Get("/api/listing", s.handleListingAPI)
		r.Get("/"+render.MapFile, s.handlePlace)
		r.Get("/"+render.ArticleFile, s.handleArticle)

		if static, err := fs.Sub(s.theme, "static"); err == nil {
			// the mounted router sees the full path, base path included
			prefix := s.basePath() + "/static/"
			r.Handle("/static/*", http.StripPrefix(prefix, http.FileServer(http.FS(static))))
		}
	})
	r.NotFound(s.handleNotFound)

	if bp := s.basePath(); bp != "" {
		root := chi.NewRouter()
		root.Mount(bp, r)
		root.NotFound(s.handleNotFound)
		return root
	}
	return r
}

func (s *Server) basePath() string {
	return s.cfg.Site.Base()
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s.cfg.Serve.Dev && !s.cfg.Data.IsRemote() {
		if err := s.startWatch(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", addr), zap.String("source", s.loader.Source.String()), zap.Bool("dev", s.cfg.Serve.Dev))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// load fetches a fresh dataset for one page view.
func (s *Server) load(ctx context.Context) (*listing.Listing, error) {
	if s.cfg.Data.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Data.Timeout)
		defer cancel()
	}
	l, warns, err := listing.Load(ctx, s.loader, s.cfg.Site)
	log := logging.FromContext(ctx)
	if err != nil {
		log.Error("data load failed", zap.Error(err))
		return nil, err
	}
	for _, w := range warns {
		log.Warn("data shape", zap.String("resource", w.Resource), zap.String("detail", w.Msg))
	}
	return l, nil
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		dirs := []string{s.cfg.Data.Source}
		if cd := s.cfg.Data.ContentDir; cd != "" {
			dirs = append(dirs, cd)
		}
		for _, dir := range dirs {
			walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return w.Add(path)
				}
				return nil
			})
			if walkErr != nil && !os.IsNotExist(walkErr) {
				err = walkErr
				return
			}
		}
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	s.logger.Info("watching for data changes")
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(200 * time.Millisecond)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			s.logger.Info("data changed, reloading clients")
			s.notify("reload")
		}
	}
}

// handleDevEvents streams reload notices to the script the listing page
// carries in dev mode.
func (s *Server) handleDevEvents(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("dev events: response cannot stream")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	ch, n := s.subscribe()
	log.Info("dev client connected", zap.Int("clients", n))
	defer func() {
		log.Info("dev client disconnected", zap.Int("clients", s.unsubscribe(ch)))
	}()

	// browsers reconnect after a server restart; one second is enough
	fmt.Fprint(w, "retry: 1000\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) subscribe() (chan string, int) {
	ch := make(chan string, 8)
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[ch] = struct{}{}
	return ch, len(s.clients)
}

func (s *Server) unsubscribe(ch chan string) int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, ch)
	return len(s.clients)
}

// notify queues msg for every dev client. A client whose queue is full
// misses it; one pending reload is as good as two.
func (s *Server) notify(msg string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func writeHTML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
