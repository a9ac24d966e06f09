package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhishek622/foodreview/auth/pkg/session"
	"github.com/abhishek622/foodreview/client/internal/controller/account"
	"github.com/abhishek622/foodreview/client/internal/controller/favorite"
	"github.com/abhishek622/foodreview/client/internal/controller/review"
	"github.com/abhishek622/foodreview/client/internal/event/kafka"
	favoritegateway "github.com/abhishek622/foodreview/client/internal/gateway/favorite/http"
	identitygateway "github.com/abhishek622/foodreview/client/internal/gateway/identity/http"
	reviewgateway "github.com/abhishek622/foodreview/client/internal/gateway/review/http"
	usergateway "github.com/abhishek622/foodreview/client/internal/gateway/user/http"
	"github.com/abhishek622/foodreview/client/internal/notify"
	"github.com/abhishek622/foodreview/pkg/discovery"
	"github.com/abhishek622/foodreview/pkg/discovery/consul"
	"github.com/abhishek622/foodreview/pkg/discovery/memory"
	"github.com/abhishek622/foodreview/pkg/gateway"
	"github.com/abhishek622/foodreview/pkg/tracing"
	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "foodreview-cli"

type app struct {
	logger    *zap.Logger
	sessions  *session.Store
	accounts  *account.Controller
	reviews   *review.Controller
	favorites *favorite.Controller
}

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to the configuration file")
	verbose := flag.Bool("v", false, "log at debug level, including metrics")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Jaeger.Host != "" {
		tracer, closer, err := tracing.New(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
		}
		defer closer.Close()
		opentracing.SetGlobalTracer(tracer)
	}

	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "foodreview",
		Tags:     map[string]string{"service": serviceName},
		Reporter: logReporter{logger: logger},
	}, time.Second)
	defer scopeCloser.Close()

	a, cleanup, err := newApp(cfg, scope, logger)
	if err != nil {
		logger.Fatal("Failed to initialize client", zap.Error(err))
	}
	defer cleanup()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	span := opentracing.StartSpan("cli/" + cmd)
	ctx = opentracing.ContextWithSpan(ctx, span)
	err = a.run(ctx, cmd, args)
	span.Finish()
	if err != nil {
		logger.Debug("Command failed", zap.String("command", cmd), zap.Error(err))
		// Deferred cleanups would be skipped by os.Exit.
		cleanup()
		scopeCloser.Close()
		logger.Sync()
		os.Exit(1)
	}
}

func newApp(cfg *config, scope tally.Scope, logger *zap.Logger) (*app, func(), error) {
	var registry discovery.Resolver
	if addr := cfg.ServiceDiscovery.Consul.Address; addr != "" {
		r, err := consul.NewRegistry(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("init service registry: %w", err)
		}
		registry = r
	} else {
		registry = memory.NewStaticRegistry(cfg.API.ServiceName, cfg.API.BaseURL)
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	identity := identitygateway.New(identitygateway.Config{
		Endpoint:      cfg.Identity.Endpoint,
		TokenEndpoint: cfg.Identity.TokenEndpoint,
		APIKey:        cfg.Identity.APIKey,
	}, httpClient)

	sessions := session.New(identity,
		session.WithBackend(session.NewFileBackend(cfg.Session.File)),
		session.WithLogger(logger),
	)
	if err := sessions.Restore(); err != nil {
		logger.Warn("Failed to restore session", zap.Error(err))
	}

	notifier := notify.NewWriter(os.Stderr)
	navigator := gateway.NavigatorFunc(func(_ context.Context, route string) {
		fmt.Fprintf(os.Stderr, "Your session has ended (%s). Run `foodreview login` to sign in again.\n", route)
	})

	limit := rate.Inf
	if cfg.API.RateLimit > 0 {
		limit = rate.Limit(cfg.API.RateLimit)
	}
	api := gateway.New(registry, sessions, navigator,
		gateway.WithHTTPClient(httpClient),
		gateway.WithLimiter(rate.NewLimiter(limit, 1)),
		gateway.WithMetrics(scope.SubScope("gateway")),
		gateway.WithLogger(logger),
		gateway.WithServiceName(cfg.API.ServiceName),
		gateway.WithLoginRoute(cfg.API.LoginRoute),
	)

	reviews := reviewgateway.New(api)
	opts := []favorite.Option{favorite.WithLogger(logger), favorite.WithProviderID(cfg.Kafka.ProviderID)}
	cleanup := func() {}
	if cfg.Kafka.Brokers != "" {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, favorite.WithPublisher(publisher))
		closed := false
		cleanup = func() {
			if closed {
				return
			}
			closed = true
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to flush favorite events", zap.Error(err))
			}
		}
	}

	return &app{
		logger:    logger,
		sessions:  sessions,
		accounts:  account.New(identity, usergateway.New(api), sessions, notifier, logger),
		reviews:   review.New(reviews, sessions, notifier),
		favorites: favorite.New(favoritegateway.New(api), reviews, sessions, notifier, opts...),
	}, cleanup, nil
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: foodreview [-config path] [-v] <command> [flags] [args]

commands:
  reviews [-search q] [-page n] [-limit n] [-sort rating]
  review <id>
  mine
  add -food name -restaurant name -location place -rating n -text review [-image url] [-favorite]
  edit <id> -food name -restaurant name -location place -rating n -text review [-image url] [-favorite]
  delete <id>
  favorites
  favorite <reviewId> [-toggle]
  unfavorite <favoriteId>
  register -name name -email email -password pw -confirm pw [-photo url]
  login -email email -password pw
  login-google -id-token token
  logout
  whoami
`)
}
