package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/config"
	"github.com/jaki95/set-workshop/internal/autosave"
	"github.com/jaki95/set-workshop/internal/dragdrop"
	"github.com/jaki95/set-workshop/internal/layout"
	"github.com/jaki95/set-workshop/internal/metrics"
	"github.com/jaki95/set-workshop/internal/playback"
	"github.com/jaki95/set-workshop/internal/refill"
	"github.com/jaki95/set-workshop/internal/sources"
	"github.com/jaki95/set-workshop/internal/storage"
	"github.com/jaki95/set-workshop/internal/tracklist"
	"github.com/jaki95/set-workshop/internal/workshop"
)

// maxNotices bounds the ring of surfaced non-blocking error notices.
const maxNotices = 20

// Server wires the workshop engine behind an HTTP API.
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	store       *workshop.Store
	coordinator *dragdrop.Coordinator
	controller  *playback.Controller
	previewer   *playback.Previewer
	resolver    sources.Resolver
	refiller    *refill.Client
	saver       *autosave.Scheduler
	persistence storage.Store
	exporter    *storage.GCSExporter
	metrics     *metrics.Metrics
	mapper      layout.Mapper

	mu      sync.Mutex
	notices []string

	// Serializes bulk refills; the store flag alone is advisory.
	refillMu sync.Mutex
}

// New creates a server instance with all engine components wired up.
func New(cfg *config.Config) (*Server, error) {
	persistence, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := workshop.NewStore(cfg.Workshop.SlotCount)

	resolver := sources.Resolver(sources.NewClient(cfg.Sources.CatalogURL))
	resolver = sources.NewRouter(resolver, tracklist.NewScraper(), workshop.SlotCapacity)

	m := metrics.New()
	var lastRev atomic.Uint64
	store.AddListener(func(snap workshop.Snapshot) {
		m.SetDirty(snap.Dirty)
		if prev := lastRev.Swap(snap.Revision); snap.Revision > prev {
			m.IncMutations()
		}
	})

	probe := playback.HTTPDurationProbe(nil, cfg.Audio.BytesPerSecond)
	controller := playback.NewController(
		playback.NewClockResource(probe),
		func(trackID int64) string {
			return fmt.Sprintf("%s/tracks/%d/audio", cfg.Audio.BaseURL, trackID)
		},
	)
	previewer := playback.NewPreviewer(
		func() playback.Resource { return playback.NewClockResource(probe) },
		playback.NewPreviewURL(cfg.Audio.PreviewBaseURL),
	)

	saver := autosave.New(store, func(ctx context.Context, snap workshop.Snapshot) error {
		if err := persistence.SaveWorkshop(ctx, &snap.State); err != nil {
			m.IncAutosaveErrors()
			return err
		}
		m.IncAutosaves()
		return nil
	}, time.Duration(cfg.Workshop.AutosaveDelayMS)*time.Millisecond)

	s := &Server{
		cfg:         cfg,
		store:       store,
		resolver:    resolver,
		controller:  controller,
		previewer:   previewer,
		refiller:    refill.NewClient(store, cfg.Refill.Endpoint),
		saver:       saver,
		persistence: persistence,
		metrics:     m,
		mapper:      layout.NewMapper(cfg.Layout.MinBPM, cfg.Layout.MaxBPM, cfg.Layout.Height),
	}
	s.coordinator = dragdrop.New(store, resolver, s.addNoticeErr)

	if cfg.Storage.GCSBucket != "" {
		exporter, err := storage.NewGCSExporter(context.Background(),
			cfg.Storage.GCSBucket, cfg.Storage.GCSObjectPrefix, cfg.Storage.GCSCredentialsFile)
		if err != nil {
			persistence.Close()
			return nil, fmt.Errorf("failed to create GCS exporter: %w", err)
		}
		s.exporter = exporter
	}

	router := gin.Default()
	s.setupRoutes(router)
	s.router = router
	return s, nil
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes(router *gin.Engine) {
	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/workshop", s.getWorkshop)
		api.POST("/workshop/new", s.newSet)
		api.POST("/workshop/load", s.loadWorkshop)
		api.GET("/workshop/layout", s.getLayout)
		api.GET("/workshop/refilling", s.getRefilling)
		api.POST("/workshop/refill", s.runRefill)

		api.POST("/workshop/slots", s.insertSlot)
		api.DELETE("/workshop/slots/:index", s.removeSlot)
		api.POST("/workshop/slots/reorder", s.reorderSlot)
		api.POST("/workshop/groups/move", s.moveGroup)
		api.POST("/workshop/slots/:id/select", s.selectTrack)
		api.POST("/workshop/slots/:id/assign", s.assignSource)

		api.POST("/workshop/drag/start", s.startDrag)
		api.POST("/workshop/drag/cancel", s.cancelDrag)
		api.POST("/workshop/drag/drop", s.drop)

		api.GET("/playback", s.getPlayback)
		api.POST("/playback/play", s.play)
		api.POST("/playback/pause", s.pause)
		api.POST("/playback/resume", s.resume)
		api.POST("/playback/seek", s.seek)
		api.POST("/playback/stop", s.stopPlayback)
		api.POST("/playback/preview", s.preview)

		api.GET("/sets", s.listSets)
		api.POST("/sets", s.createSet)
		api.GET("/sets/:id", s.getSet)
		api.PUT("/sets/:id", s.updateSet)
		api.DELETE("/sets/:id", s.deleteSet)
		api.POST("/sets/:id/export", s.exportSet)
		api.GET("/sets/:id/exports", s.listExports)

		api.GET("/profiles", s.listProfiles)
		api.POST("/profiles", s.createProfile)
		api.GET("/profiles/:id", s.getProfile)
		api.PUT("/profiles/:id", s.updateProfile)
		api.DELETE("/profiles/:id", s.deleteProfile)
		api.POST("/profiles/:id/duplicate", s.duplicateProfile)

		api.GET("/notices", s.getNotices)
	}
}

// Start runs the HTTP server.
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// Close releases resources held by the server.
func (s *Server) Close() error {
	s.saver.Close()
	s.controller.Stop()
	if s.exporter != nil {
		s.exporter.Close()
	}
	return s.persistence.Close()
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "set-workshop",
	})
}

// addNotice records a non-blocking user-visible notice.
func (s *Server) addNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *Server) addNoticeErr(err error) {
	s.addNotice(err.Error())
}

// getNotices returns and clears the accumulated notices.
func (s *Server) getNotices(c *gin.Context) {
	s.mu.Lock()
	notices := s.notices
	s.notices = nil
	s.mu.Unlock()

	if notices == nil {
		notices = []string{}
	}
	c.JSON(200, gin.H{"notices": notices})
}
