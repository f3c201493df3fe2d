package pg

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agora-dev/agora/shared/config"
	"github.com/agora-dev/agora/shared/domain"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, storage, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "agora"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithInitScripts(filepath.Join("..", "..", "..", "migrations", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// the image restarts once after running init scripts
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	cfg := config.Default()
	cfg.Private.Pg = config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}
	storage, err := New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return storage, container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// ==================
// Fixtures
// ==================

var fixtureSeq atomic.Int64

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), fixtureSeq.Add(1))
}

func createUser(t *testing.T) domain.UserId {
	t.Helper()
	var id domain.UserId
	err := storage.db.QueryRow(`INSERT INTO users (email) VALUES ($1) RETURNING id`, uniq("user")+"@example.com").Scan(&id)
	require.NoError(t, err)
	return id
}

func createMedia(t *testing.T, title string) domain.MediaId {
	t.Helper()
	var id domain.MediaId
	err := storage.db.QueryRow(`INSERT INTO media (title, description) VALUES ($1, $2) RETURNING id`, title, title+" description").Scan(&id)
	require.NoError(t, err)
	return id
}

func createClub(t *testing.T, owner domain.UserId, mediaId *domain.MediaId, createdAt time.Time) domain.ClubId {
	t.Helper()
	var id domain.ClubId
	err := storage.db.QueryRow(`
		INSERT INTO clubs (name, description, owner_id, media_id, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		uniq("club"), "a club", owner, mediaId, createdAt,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func joinClub(t *testing.T, clubId domain.ClubId, userId domain.UserId) {
	t.Helper()
	_, err := storage.db.Exec(`INSERT INTO club_members (club_id, user_id) VALUES ($1, $2)`, clubId, userId)
	require.NoError(t, err)
}

func createThread(t *testing.T, author domain.UserId, clubId *domain.ClubId, createdAt time.Time) domain.ThreadId {
	t.Helper()
	var id domain.ThreadId
	err := storage.db.QueryRow(`
		INSERT INTO threads (club_id, author_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		clubId, author, uniq("thread"), "thread body", createdAt,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
