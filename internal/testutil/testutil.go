package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkaradima/support-chat-backend/internal/api"
	"github.com/mkaradima/support-chat-backend/internal/config"
	"github.com/mkaradima/support-chat-backend/internal/domain"
	"github.com/mkaradima/support-chat-backend/internal/llm"
	"github.com/mkaradima/support-chat-backend/internal/repository"
	repoPostgres "github.com/mkaradima/support-chat-backend/internal/repository/postgres"
	"github.com/mkaradima/support-chat-backend/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_support_chat"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"chat_messages",
		"user_sessions",
		"user_auth",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:             "0", // Random port
		Environment:      "test",
		SecretKey:        "test-secret-key-for-testing-only",
		SessionTTLHours:  1,
		GeminiAPIKey:     "test-api-key",
		ChatModel:        "test-model",
		ChatTemperature:  0.7,
		ChatMaxTokens:    150,
		ContextMessages:  3,
		SupportGuidePath: "testdata/support_guide.txt",
	}
}

// StubCompletionClient replaces the external completion API in tests.
type StubCompletionClient struct {
	Reply string
	Err   error

	// LastHistory records the history passed to the most recent call.
	LastHistory  []llm.Message
	LastUserText string
	Calls        int
}

func (s *StubCompletionClient) Complete(ctx context.Context, history []llm.Message, userText string) (string, error) {
	s.Calls++
	s.LastHistory = history
	s.LastUserText = userText
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server      *httptest.Server
	DB          *TestDB
	Repos       *repository.Repositories
	Services    *service.Services
	Completions *StubCompletionClient
	Config      *config.Config
}

// NewTestServer creates a complete test server with all dependencies. The
// completion gateway is a stub; no request ever leaves the process.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	completions := &StubCompletionClient{Reply: "stubbed reply"}

	services := service.NewServices(repos, completions, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:      server,
		DB:          testDB,
		Repos:       repos,
		Services:    services,
		Completions: completions,
		Config:      cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// NewClient returns an HTTP client with a cookie jar, so the session cookie
// set by register/login is carried on subsequent requests.
func (ts *TestServer) NewClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}
