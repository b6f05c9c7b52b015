package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"time"

	"badmintonStore/config"
	"badmintonStore/handlers"
	"badmintonStore/payment"
	"badmintonStore/repository"
	"badmintonStore/repository/memory"
	"badmintonStore/services"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type stores struct {
	catalog  repository.CatalogRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	ctx := context.Background()
	log := logrus.StandardLogger()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))
	if cfg.EnableTracing {
		log.Info("Tracing enabled.")
		exporter, err := newTraceExporter(ctx, cfg, os.Stderr)
		if err != nil {
			log.Fatalf("tracing: %v", err)
		}
		tp := initTracing(log, exporter)
		defer tp.Shutdown(ctx)
	} else {
		log.Info("Tracing disabled.")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.Close()

	bridge := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey, cfg.PaymentWebhookSecret, nil)
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(st.users, st.sessions, tokens)
	if err = userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	hp := handlers.HandlerParams{
		UsrService:     userService,
		CatalogService: services.NewCatalogService(st.catalog),
		CrtService:     services.NewCartService(st.catalog, st.carts),
		OrdService:     services.NewOrderService(st.catalog, st.carts, st.orders, st.users, bridge, cfg.PaymentCurrency),
		Payments:       bridge,
	}
	ha := handlers.NewHandler(hp)

	var handler http.Handler = ha.Router()
	handler = handlers.NewLogHandler(log, handler)
	handler = otelhttp.NewHandler(handler, serviceName)

	log.Infof("starting server on :%s (storage=%s)", cfg.Port, cfg.Storage)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

const serviceName = "badminton-store"

// newTraceExporter picks the span sink: stdout writes spans to out, otlp
// ships them to the collector at cfg.CollectorAddr.
func newTraceExporter(ctx context.Context, cfg config.Config, out io.Writer) (sdktrace.SpanExporter, error) {
	if cfg.TraceExporter == config.TraceOTLP {
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.CollectorAddr),
			otlptracegrpc.WithInsecure())
	}
	return stdouttrace.New(stdouttrace.WithWriter(out))
}

func initTracing(log logrus.FieldLogger, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("Tracing provider initialized")
	return tp
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (st *stores, err error) {
	st = &stores{}
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		st.catalog = memory.NewCatalogRepository()
		st.carts = memory.NewCartRepository()
		st.orders = memory.NewOrderRepository()
		st.users = memory.NewUserRepository()
		st.sessions = memory.NewSessionRepository()
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresURL())
	if err != nil {
		return
	}
	st.closers = append(st.closers, func() { db.Close() })
	if err = repository.Migrate(cctx, db); err != nil {
		return
	}
	if st.users, err = repository.NewUserRepository(db); err != nil {
		return
	}
	if st.orders, err = repository.NewOrderRepository(db); err != nil {
		return
	}
	log.Info("postgres connected")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	})
	st.closers = append(st.closers, func() { rdb.Close() })
	if st.carts, err = repository.NewCartRepository(cctx, rdb); err != nil {
		return
	}
	if st.sessions, err = repository.NewSessionRepository(cctx, rdb); err != nil {
		return
	}
	log.Info("redis connected")

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return
	}
	st.closers = append(st.closers, func() { client.Disconnect(context.Background()) })
	if st.catalog, err = repository.NewCatalogRepository(cctx, client.Database(cfg.MongoDatabase)); err != nil {
		return
	}
	log.Info("mongo connected")
	return
}
