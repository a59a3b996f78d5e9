package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/api"
	"quiz-attempt-service/internal/infra/memory"
	pgstore "quiz-attempt-service/internal/infra/postgres"
	pgmigrations "quiz-attempt-service/internal/infra/postgres/migrations"
	redisstore "quiz-attempt-service/internal/infra/redis"
)

func TestAttemptEndToEndPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	backend := newFakeBackend(t)
	defer backend.Close()

	client := api.NewClient(backend.URL, 5*time.Second)
	store := pgstore.NewProgressStore(pool)
	service := app.NewAttemptService(memory.NewQuizBank(client, 5*time.Minute), store, client, nil, 60)

	runAttempt(t, ctx, service, store)
}

func TestAttemptEndToEndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	redisClient := goredis.NewClient(opts)
	defer redisClient.Close()

	backend := newFakeBackend(t)
	defer backend.Close()

	client := api.NewClient(backend.URL, 5*time.Second)
	store := redisstore.NewProgressStore(redisClient)
	service := app.NewAttemptService(memory.NewQuizBank(client, 5*time.Minute), store, client, nil, 60)

	runAttempt(t, ctx, service, store)
}

// runAttempt drives a full attempt: the remote scoring endpoint fails, local
// scoring takes over, and the result lands in the durable store.
func runAttempt(t *testing.T, ctx context.Context, service *app.AttemptService, store app.ProgressStore) {
	t.Helper()

	session, err := service.NewSession(ctx, "u1", "c1", "quiz-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.SelectAnswer("q1", "4"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	result, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Percentage != 100 || result.Grade != "A+" {
		t.Fatalf("expected perfect local-fallback score, got %+v", result)
	}

	progress, err := store.Get(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !progress.Completed || progress.Percentage != 100 || progress.Correct != 1 {
		t.Fatalf("unexpected persisted progress: %+v", progress)
	}

	// The listing now mirrors the completed attempt.
	quizzes := service.ListQuizzes(ctx, "u1", "c1")
	if len(quizzes) != 1 || !quizzes[0].Completed || quizzes[0].Score != 100 {
		t.Fatalf("expected decorated listing, got %+v", quizzes)
	}
}

// newFakeBackend serves the quiz list and fails every scoring call, forcing the
// local fallback path end to end.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quizzes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"quizzes": []domain.Quiz{{
				ID:    "quiz-1",
				Title: "Arithmetic",
				Questions: []domain.Question{{
					ID:            "q1",
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5"},
					CorrectAnswer: "4",
					Points:        1,
				}},
			}},
		})
	})
	mux.HandleFunc("/submit-quiz/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scoring offline", http.StatusServiceUnavailable)
	})
	return httptest.NewServer(mux)
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
