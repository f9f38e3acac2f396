package cli

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"kiddoland-quiz-service/internal/app"
	"kiddoland-quiz-service/internal/config"
	"kiddoland-quiz-service/internal/event"
	"kiddoland-quiz-service/internal/infra/memory"
	pgstore "kiddoland-quiz-service/internal/infra/postgres"
	redisstore "kiddoland-quiz-service/internal/infra/redis"
	"kiddoland-quiz-service/internal/infra/sqlite"
	"kiddoland-quiz-service/internal/quiz"
	transport "kiddoland-quiz-service/internal/transport/http"
)

// deps is the wired service plus the handles that need closing.
type deps struct {
	service *app.QuizService
	notes   transport.NotificationReader
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks Redis/Postgres/SQLite/RabbitMQ backends when configured and
// falls back to in-memory ones otherwise.
func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(quiz.DefaultBanks())
	if pool != nil {
		loader = pgstore.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	noteTTL := config.TTLDuration(cfg.Notifications.TTL, 3*time.Second)
	var notifier interface {
		app.Notifier
		transport.NotificationReader
	}
	if redisClient != nil {
		notifier = redisstore.NewNotifier(redisClient, noteTTL)
	} else {
		notifier = memory.NewNotifier(noteTTL)
	}
	d.notes = notifier

	var progress app.ProgressStore
	switch {
	case pool != nil:
		progress = pgstore.NewProgressStore(pool)
	case redisClient != nil:
		progress = redisstore.NewProgressStore(redisClient)
	case cfg.SQLite.DSN != "":
		sq, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = sq.Close() })
		progress = sq
	default:
		progress = memory.NewProgressStore()
	}

	opts := []app.ServiceOption{
		app.WithNotifier(notifier),
		app.WithProgressStore(progress),
	}
	if cfg.AMQP.URL != "" {
		exchange := cfg.AMQP.Exchange
		if exchange == "" {
			exchange = "quiz.events"
		}
		pub, err := event.NewPublisher(cfg.AMQP.URL, exchange)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, pub.Close)
		opts = append(opts, app.WithCompletionPublisher(pub))
	} else {
		log.Printf("amqp url not configured, completion events are not published")
	}

	d.service = app.NewQuizService(store, banks, opts...)
	return d, nil
}
