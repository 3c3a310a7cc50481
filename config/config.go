package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

type Config struct {
	CockroachURL      string        `ff:"long: cockroach-url, default: postgresql://root@127.0.0.1:26257/defaultdb?sslmode=disable, usage: URL for the CockroachDB database"`
	Port              uint32        `ff:"long: port, short: p, default: 4000, usage: Port for the HTTP server"`
	MinioEndpoint     string        `ff:"long: minio-endpoint, default: localhost:9000, usage: MinIO endpoint"`
	MinioAccessKey    string        `ff:"long: minio-access-key, default: minioadmin, usage: MinIO access key"`
	MinioSecretKey    string        `ff:"long: minio-secret-key, default: minioadmin, usage: MinIO secret key"`
	MinioSecure       bool          `ff:"long: minio-secure, default: false, usage: Use secure connection to MinIO"`
	MinioPublicURL    string        `ff:"long: minio-public-url, default: http://localhost:9000, usage: Public base URL attachments are served from"`
	AttachmentsBucket string        `ff:"long: attachments-bucket, default: message-attachments, usage: MinIO bucket for message attachments"`
	CleanupTimeout    time.Duration `ff:"long: cleanup-timeout, default: 5s, usage: Timeout for removing partially uploaded attachments"`
	NATSURL           string        `ff:"long: nats-url, default: nats://127.0.0.1:4222, usage: URL for the NATS server"`
	RedisURL          string        `ff:"long: redis-url, default: redis://127.0.0.1:6379/0, usage: URL for the Redis session store"`
	SyncToken         string        `ff:"long: sync-token, usage: Shared secret of the identity provider; internal endpoints are disabled when empty"`
	AllowedOrigins    string        `ff:"long: allowed-origins, usage: Comma separated origins allowed to open realtime websockets; same origin only when empty"`
	BackgroundTimeout time.Duration `ff:"long: background-timeout, default: 15s, usage: Timeout for background event publishing"`
	ShutdownTimeout   time.Duration `ff:"long: shutdown-timeout, default: 10s, usage: Timeout for graceful shutdown"`
	MaxUploadFiles    int           `ff:"long: max-upload-files, default: 10, usage: Maximum number of files per upload"`
	MaxUploadSize     uint64        `ff:"long: max-upload-size, default: 26214400, usage: Maximum size in bytes of each uploaded file"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	fs := ff.NewFlagSetFrom("backchannel", &cfg)
	err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("BACKCHANNEL"))
	if errors.Is(err, ff.ErrHelp) {
		fmt.Println(ffhelp.Flags(fs))
		os.Exit(0)
	}

	return cfg, err
}
