package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gobuffalo/packr"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/pirouette/content/internal/bridge"
	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/compress"
	"github.com/pirouette/content/internal/config"
	"github.com/pirouette/content/internal/filestore"
	"github.com/pirouette/content/internal/job"
	"github.com/pirouette/content/internal/jobs"
	"github.com/pirouette/content/internal/queue"
	"github.com/pirouette/content/internal/service"
	"github.com/pirouette/content/internal/site"
	"github.com/pirouette/content/internal/store"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start wires the stores, services, and HTTP surface, then serves until
// an interrupt arrives.
func Start(httpPort string) error {
	var err error

	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	rdb := config.GetDb(cnf)

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	// no database configured is a valid deployment; content resolves to
	// built-in defaults and writes are silently discarded
	var contentStore store.Store
	if rdb == nil {
		contentStore = store.NewNopStore()
	} else {
		gormStore := store.NewGormStore(rdb)
		if err := gormStore.Migrate(); err != nil {
			return err
		}
		contentStore = gormStore
	}

	var contentCache cache.ContentCache = cache.NewNopContentCache()
	var updates queue.ContentQueue
	if cnf.RedisAddr != "" {
		redis, err := cache.NewRedis(cnf.RedisAddr)
		if err != nil {
			return err
		}
		contentCache = cache.NewRedisContentCache(redis)
		updates = cache.NewRedisContentQueue(redis)
	}

	files, err := filestore.New(cnf.ContentDir)
	if err != nil {
		return err
	}

	compressor := compress.ByName(cnf.Compression)
	schemas := site.Schemas()
	blockKinds := site.Blocks()
	mappings := site.Mappings()

	pages := service.NewPageService(compressor, cnf.Compression, contentStore, schemas, blockKinds, contentCache, updates)
	sections := service.NewSectionService(contentStore)
	contents := service.NewContentService(files)
	hub := bridge.NewHub()

	handler := NewHandler(pages, sections, contents, mappings, hub)

	router := chi.NewRouter()
	handler.Routes(router)

	apiMux := http.NewServeMux()
	adminDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(adminDocs)))
	apiMux.Handle("/", router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(apiMux),
	}

	// background maintenance: backup pruning plus cache sync from the
	// update queue
	executor := jobs.NewTaskExecutor(nil, []jobs.CronJob{
		job.NewBackupPruner(contentStore),
	})
	executor.Run()

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if updates != nil {
		syncer := jobs.NewCacheSyncTask(contentCache, updates)
		go syncer.Run(jobCtx)
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting content server on: ", httpPort)
		logrus.Info("admin docs: http://localhost", httpPort, docsPath)
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting content server: %v", err)
			}
		}
		logrus.Infof("content server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	executor.Stop()
	cancelJobs()

	err = restServer.Shutdown(context.Background())
	if err != nil {
		logrus.Errorf("error stopping content server: %v", err)
	}

	wg.Wait()

	return nil
}
