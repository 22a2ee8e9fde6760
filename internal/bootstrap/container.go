package bootstrap

import (
	"context"
	"time"

	"quiknote-be/internal/config"
	"quiknote-be/internal/controller"
	"quiknote-be/internal/handler"
	"quiknote-be/internal/metrics"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/breaker"
	"quiknote-be/internal/remote/memory"
	"quiknote-be/internal/remote/supabase"
	"quiknote-be/internal/repository/contract"
	"quiknote-be/internal/repository/implementation"
	memrepo "quiknote-be/internal/repository/memory"
	"quiknote-be/internal/service"
	"quiknote-be/internal/store"
	"quiknote-be/internal/websocket"
	"quiknote-be/internal/workspace"
	pktNats "quiknote-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const module = "Bootstrap"

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ProfileController  controller.IProfileController
	NoteController     controller.INoteController
	NotebookController controller.INotebookController
	TrashController    controller.ITrashController
	SyncController     controller.ISyncController
	BoardController    controller.IBoardController

	RealtimeHandler *handler.RealtimeHandler

	// Exposed for main.go and the server
	Logger          logger.ILogger
	Issuer          *serverutils.TokenIssuer
	Metrics         *metrics.Collector
	Registry        *workspace.Registry
	ConsumerService service.IConsumerService
	ResyncService   *service.ResyncService
	WebSocketHub    *websocket.Hub

	closers []func()
}

// NewContainer wires the application. db may be nil, in which case board
// placements are kept in memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Redis
	rdb := newRedis(cfg.App.RedisURL, sysLogger)
	var tokens contract.SessionTokenRepository
	if rdb != nil {
		tokens = implementation.NewSessionTokenRepository(rdb)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	} else {
		tokens = memrepo.NewSessionTokenRepository()
	}

	// 3. Board storage
	var boards contract.BoardRepository
	if db != nil {
		boards = implementation.NewBoardRepository(db)
	} else {
		boards = memrepo.NewBoardRepository()
	}

	// 4. Remote backend
	factory := newBackendFactory(cfg, sysLogger)

	// 5. Metrics and event sink
	publisherService := service.NewPublisherService(cfg.Events.Topic, pubSub)
	var sink store.EventSink = publisherService
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewCollector(cfg.Metrics.Namespace)
		sink = c.Metrics.Sink(publisherService)
	}

	// 6. Workspaces
	c.Registry = workspace.NewRegistry(factory, tokens, sysLogger,
		workspace.WithEventSink(sink),
		workspace.WithStoreOptions(
			store.WithSyncPolicy(syncPolicy(cfg.Store.SyncPolicy)),
			store.WithFanout(cfg.Store.Fanout),
		),
		workspace.WithTTL(cfg.Auth.WorkspaceTTL),
	)
	if c.Metrics != nil {
		c.Metrics.TrackWorkspaces(cfg.Metrics.Namespace, c.Registry.Count)
	}

	// 7. Realtime
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	c.WebSocketHub = websocket.NewHub(rdb, uuid.NewString(), wsLogger)
	go c.WebSocketHub.Run()

	var exporter service.EventExporter
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Events.Stream)
		if err != nil {
			sysLogger.Warn(module, "Failed to connect to NATS publisher, change export disabled", map[string]interface{}{"error": err})
		} else {
			exporter = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.Topic, c.WebSocketHub, exporter, wsLogger)

	// 8. Services
	c.Issuer = serverutils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(c.Registry, c.Issuer, sysLogger)
	profileService := service.NewProfileService(c.Registry)
	boardService := service.NewBoardService(c.Registry, boards, nil, sysLogger)
	noteService := service.NewNoteService(c.Registry, boardService)
	notebookService := service.NewNotebookService(c.Registry)
	trashService := service.NewTrashService(c.Registry, boardService)
	syncService := service.NewSyncService(c.Registry)
	c.ResyncService = service.NewResyncService(cfg.Store.ResyncSchedule, syncService, sysLogger)

	// 9. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.ProfileController = controller.NewProfileController(profileService)
	c.NoteController = controller.NewNoteController(noteService)
	c.NotebookController = controller.NewNotebookController(notebookService)
	c.TrashController = controller.NewTrashController(trashService)
	c.SyncController = controller.NewSyncController(syncService)
	c.BoardController = controller.NewBoardController(boardService)
	c.RealtimeHandler = handler.NewRealtimeHandler(c.Issuer, c.Registry, c.WebSocketHub, wsLogger)

	return c
}

// Close releases connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		log.Info(module, "REDIS_URL not set, sessions are kept in memory", nil)
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(module, "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(module, "Failed to connect to Redis", map[string]interface{}{"error": err})
	}
	return rdb
}

func newBackendFactory(cfg *config.Config, log logger.ILogger) remote.BackendFactory {
	var factory remote.BackendFactory
	if cfg.BaaS.Driver == "memory" {
		log.Warn(module, "Using in-memory backend, data is lost on restart", nil)
		factory = memory.NewServer().Factory()
	} else {
		if !cfg.BaaS.Configured() {
			log.Error(module, "Backend is not configured, set BAAS_ENDPOINT and BAAS_PROJECT_KEY", nil)
		}
		factory = supabase.NewFactory(cfg.BaaS)
	}

	if !cfg.Breaker.Enabled {
		return factory
	}
	bc := breaker.DefaultConfig("baas")
	bc.Timeout = cfg.Breaker.Timeout
	bc.FailureThreshold = cfg.Breaker.FailureThreshold
	return breaker.WrapFactory(factory, breaker.New(bc, log))
}

func syncPolicy(name string) store.SyncPolicy {
	if name == "refetch" {
		return store.SyncRefetch
	}
	return store.SyncMerge
}
