package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/employee_profile_service/internal/attachment"
	"github.com/locvowork/employee_profile_service/internal/config"
	"github.com/locvowork/employee_profile_service/internal/database"
	"github.com/locvowork/employee_profile_service/internal/domain"
	"github.com/locvowork/employee_profile_service/internal/export"
	"github.com/locvowork/employee_profile_service/internal/handler"
	"github.com/locvowork/employee_profile_service/internal/logger"
	"github.com/locvowork/employee_profile_service/internal/repository"
	"github.com/locvowork/employee_profile_service/internal/service"
)

type App struct {
	Echo            *echo.Echo
	DB              *sql.DB
	DataStoreClient *datastore.Client
	Service         service.EmployeeService

	fileSink *attachment.FileSink
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	repo, err := a.newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := a.newAttachmentStore(ctx, cfg)
	if err != nil {
		return err
	}
	exporter, err := export.NewExporter()
	if err != nil {
		return fmt.Errorf("failed to load export layout: %w", err)
	}

	// Initialize dependencies
	a.Service = service.NewEmployeeService(repo, store)
	empHandler := handler.NewEmployeeHandler(a.Service, handler.NewPresenter(store), exporter)

	// Register Middlewares
	a.RegisterMiddlewares(cfg.MAX_UPLOAD_SIZE)

	// Register Routes
	a.RegisterRoutes(empHandler)

	logger.InfoLog(ctx, "Using %s record backend with %s attachments", cfg.RECORD_BACKEND, store.Kind())
	return nil
}

func (a *App) newRepository(ctx context.Context, cfg *config.EnvConfig) (domain.EmployeeRepository, error) {
	switch cfg.RECORD_BACKEND {
	case config.BackendMemory:
		return repository.NewMemoryEmployeeRepository(), nil

	case config.BackendDatastore:
		client, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, err
		}
		a.DataStoreClient = client
		return repository.NewDatastoreEmployeeRepository(client), nil

	case config.BackendElasticsearch:
		client, err := database.NewElasticClient(cfg.ELASTIC_URL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndex(ctx, client, cfg.ELASTIC_INDEX); err != nil {
			return nil, err
		}
		return repository.NewElasticEmployeeRepository(client, cfg.ELASTIC_INDEX), nil

	default:
		// Initialize database connection
		dbConfig := database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		}
		db, err := database.NewPostgresDB(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		return repository.NewEmployeeRepository(db), nil
	}
}

func (a *App) newAttachmentStore(ctx context.Context, cfg *config.EnvConfig) (domain.AttachmentStore, error) {
	if cfg.ATTACHMENT_MODE == config.AttachmentInline {
		return attachment.NewInlineStore(), nil
	}

	if cfg.CONTENT_SINK == config.SinkS3 {
		s3Cfg := attachment.S3Config{
			Region:        cfg.S3_REGION,
			Endpoint:      cfg.S3_ENDPOINT,
			AccessKey:     cfg.S3_ACCESS_KEY,
			SecretKey:     cfg.S3_SECRET_KEY,
			Bucket:        cfg.S3_BUCKET,
			KeyPrefix:     cfg.S3_KEY_PREFIX,
			PublicBaseURL: cfg.S3_PUBLIC_BASE_URL,
			PathStyle:     cfg.S3_PATH_STYLE,
		}
		client, err := attachment.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		sink, err := attachment.NewS3Sink(client, s3Cfg)
		if err != nil {
			return nil, err
		}
		return attachment.NewExternalStore(sink), nil
	}

	sink, err := attachment.NewFileSink(cfg.UPLOAD_DIR, cfg.UPLOAD_URL_PREFIX)
	if err != nil {
		return nil, err
	}
	a.fileSink = sink
	return attachment.NewExternalStore(sink), nil
}

func (a *App) RegisterMiddlewares(bodyLimit string) {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(handler.RequestLogger())
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	if bodyLimit != "" {
		a.Echo.Use(middleware.BodyLimit(bodyLimit))
	}
}

func (a *App) RegisterRoutes(empHandler *handler.EmployeeHandler) {
	a.Echo.GET("/healthz", handler.HealthHandler)

	a.Echo.POST("/employees", empHandler.CreateHandler)
	a.Echo.GET("/employees", empHandler.ListHandler)
	a.Echo.GET("/employees/export", empHandler.ExportHandler)
	a.Echo.GET("/employees/:id", empHandler.GetHandler)
	a.Echo.PUT("/employees/:id", empHandler.UpdateHandler)
	a.Echo.DELETE("/employees/:id", empHandler.DeleteHandler)

	// Files written by the filesystem sink
	if a.fileSink != nil {
		a.Echo.Pre(handler.HideDotFiles(a.fileSink.URLPrefix()))
		a.Echo.Static(a.fileSink.URLPrefix(), a.fileSink.Root())
	}
}

// Run serves until the server is shut down. The caller owns Close.
func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Close releases the backend connections. Later calls are no-ops.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	if a.DataStoreClient != nil {
		a.DataStoreClient.Close()
		a.DataStoreClient = nil
	}
}
