package orrery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/orrery-web/orrery/core"
	"github.com/orrery-web/orrery/web"
	"go.uber.org/zap"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5000

	immutableCache  = "public, max-age=31536000, immutable"
	shutdownTimeout = 5 * time.Second
)

type RuntimeConfig struct {
	Env        string
	Host       string
	Port       int
	ConfigPath string
}

func (cfg RuntimeConfig) Debug() bool {
	return cfg.Env == "dev"
}

func (cfg RuntimeConfig) Addr() string {
	if cfg.Host == "" {
		return fmt.Sprintf(":%d", cfg.Port)
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func (cfg RuntimeConfig) configPath() string {
	if cfg.ConfigPath == "" {
		return core.DefaultConfigPath
	}
	return cfg.ConfigPath
}

var Exit = os.Exit

var ListenAndServe = func(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return http.ErrServerClosed
	}
}

type site struct {
	addr     string
	handler  http.Handler
	config   *core.Config
	reloader core.LiveReloaderInterface
	reset    func()
}

func BuildServer(cfg RuntimeConfig) (string, http.Handler) {
	s := buildSite(cfg)
	return s.addr, s.handler
}

func buildSite(cfg RuntimeConfig) *site {
	config := core.LoadConfig(cfg.configPath())
	log := core.Log()

	templates := web.Resolve(config.TemplateDir, web.Templates)
	static := web.Resolve(config.StaticDir, web.Static)
	assets := core.NewAssetStore(static, cfg.Env, config.MinifyEnabled())

	mux := http.NewServeMux()
	s := &site{addr: cfg.Addr(), config: config}

	if cfg.Debug() {
		setupDevStaticRoutes(mux, static)

		s.reloader = core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, s.reloader.Handler)

		mux.Handle("/", core.NewRouter(*config, core.RuntimeContext{
			Env:       cfg.Env,
			Templates: templates,
			Assets:    assets,
		}))
	} else {
		mux.Handle("/static/", makeStaticHandler(assets))
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			serveAsset(w, r, assets, "robots.txt")
		})

		router := core.NewRouter(*config, core.RuntimeContext{
			Env:       cfg.Env,
			Templates: templates,
			Assets:    assets,
		})
		mux.Handle("/", router)

		s.reset = func() {
			if rs, ok := router.(core.Resetter); ok {
				rs.Reset()
			}
			assets.Reset()
		}
	}

	s.handler = core.Recover(log)(core.RequestLogger(log)(mux))
	return s
}

// watchDirs lists the on-disk directories dev mode reloads from.
func (s *site) watchDirs() []string {
	var dirs []string
	for _, dir := range []string{s.config.TemplateDir, s.config.StaticDir} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

var Start = func(cfg RuntimeConfig) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := buildSite(cfg)
	log := core.Log()
	defer core.SyncLogger()

	if s.reloader != nil {
		if dirs := s.watchDirs(); len(dirs) > 0 {
			w, err := core.NewWatcher(ctx, dirs, s.reloader.BroadcastReload)
			if err != nil {
				log.Warn("live reload watcher disabled", zap.Strings("dirs", dirs), zap.Error(err))
			} else {
				defer w.Close()
				log.Info("watching for changes", zap.Strings("dirs", dirs))
			}
		}
	}

	if s.reset != nil {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go s.resetOnHangup(ctx, hup)
	}

	fmt.Println("Starting Orrery in", cfg.Env, "mode...")
	fmt.Printf("✅ Orrery running at http://%s\n", displayAddr(s.addr))
	log.Info("server listening",
		zap.String("addr", s.addr),
		zap.String("env", cfg.Env),
		zap.Bool("debug", cfg.Debug()),
	)

	err := ListenAndServe(ctx, s.addr, s.handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "❌ Server failed: %v\n", err)
		log.Error("server failed", zap.Error(err))
		core.SyncLogger()
		Exit(1)
		return
	}

	log.Info("server stopped")
}

// resetOnHangup drops cached pages and assets on every signal so edited
// files are served without a restart.
func (s *site) resetOnHangup(ctx context.Context, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			s.reset()
			core.Log().Info("caches cleared")
		}
	}
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func setupDevStaticRoutes(mux *http.ServeMux, static fs.FS) {
	fileServer := http.FileServer(http.FS(static))

	mux.Handle("/static/", http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, err := fs.Stat(static, path.Clean("./"+r.URL.Path)); err == nil && info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		fileServer.ServeHTTP(w, r)
	})))

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFileFS(w, r, static, "robots.txt")
	})
}

func makeStaticHandler(assets *core.AssetStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(r.URL.Path, "/static/")
		if hasDotDot(rel) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		serveAsset(w, r, assets, path.Clean(rel))
	})
}

func serveAsset(w http.ResponseWriter, r *http.Request, assets *core.AssetStore, name string) {
	a, err := assets.Get(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set("Cache-Control", immutableCache)
	h.Set("Vary", "Accept-Encoding")

	if core.AcceptsGzip(r) && a.Gzip != nil {
		h.Set("Content-Encoding", "gzip")
		h.Set("Content-Length", strconv.Itoa(len(a.Gzip)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(a.Gzip)
		}
		return
	}

	h.Set("Content-Length", strconv.Itoa(len(a.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(a.Body)
	}
}

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
