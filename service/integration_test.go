package service

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/cockroach"
	"github.com/nakamauwu/backchannel/cockroach/migrator"
	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/types"
	"github.com/ory/dockertest/v3"
)

var testCockroach *cockroach.Cockroach

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	var skipIntegration bool
	flag.BoolVar(&skipIntegration, "skip-integration", false, "Skip integration tests docker setup")
	flag.Parse()

	if skipIntegration || testing.Short() {
		return m.Run()
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("could not create docker pool: %v\n", err)
		return 1
	}

	testDB, cleanup, err := setupTestDB(pool)
	if err != nil {
		fmt.Printf("could not setup test db: %v\n", err)
		return 1
	}

	defer func() {
		if err := cleanup(); err != nil {
			fmt.Printf("could not cleanup cockroach container: %v\n", err)
		}
	}()

	if err := migrator.Migrate(context.Background(), testDB, cockroach.MigrationsFS); err != nil {
		fmt.Printf("could not migrate: %v\n", err)
		return 1
	}

	testCockroach = cockroach.New(testDB)

	return m.Run()
}

func setupTestDB(pool *dockertest.Pool) (*pgxpool.Pool, func() error, error) {
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "cockroachdb/cockroach",
		Tag:        "latest",
		Cmd:        []string{"start-single-node", "--insecure"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create cockroach resource: %w", err)
	}

	var db *pgxpool.Pool
	err = pool.Retry(func() (err error) {
		hostPort := resource.GetHostPort("26257/tcp")
		db, err = pgxpool.New(context.Background(), "postgresql://root@"+hostPort+"/defaultdb?sslmode=disable")
		if err != nil {
			return fmt.Errorf("could not open db: %w", err)
		}

		if err = db.Ping(context.Background()); err != nil {
			return fmt.Errorf("could not ping db: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return db, func() error {
		db.Close()
		return pool.Purge(resource)
	}, nil
}

func requireDB(t *testing.T) {
	t.Helper()
	if testCockroach == nil {
		t.Skip("integration tests disabled")
	}
}

// newTestService builds a service over the test database
// recording the events it publishes.
func newTestService(t *testing.T) (*Service, *recordingBus) {
	t.Helper()

	bus := &recordingBus{}
	svc := New(&Config{
		Cockroach: testCockroach,
		Events:    bus,
		BaseCtx:   context.Background(),
	})

	t.Cleanup(func() {
		_ = svc.Close()
	})

	return svc, bus
}

func genUser(t *testing.T, svc *Service) (types.User, context.Context) {
	t.Helper()

	externalID := id.Generate()
	user, err := svc.SyncUser(context.Background(), types.UpsertUser{
		ExternalID: externalID,
		Username:   "u" + externalID[len(externalID)-12:],
	})
	if err != nil {
		t.Fatalf("could not sync user: %v", err)
	}

	return user, auth.ContextWithUser(context.Background(), user)
}
