package minio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/nakamauwu/backchannel/types"
	"golang.org/x/sync/errgroup"
)

type Minio struct {
	baseCtx        context.Context
	cleanupTimeout time.Duration
	client         *minio.Client
	publicURL      string
	errChan        chan error
}

// New wraps the client. publicURL is the base objects are served from,
// e.g. "https://cdn.example.org".
func New(ctx context.Context, client *minio.Client, publicURL string, cleanupTimeout time.Duration) *Minio {
	return &Minio{
		baseCtx:        ctx,
		cleanupTimeout: cleanupTimeout,
		client:         client,
		publicURL:      strings.TrimSuffix(publicURL, "/"),
		errChan:        make(chan error, 1),
	}
}

func (m *Minio) Errs() <-chan error {
	return m.errChan
}

// ObjectURL is where a public object at path can be fetched from.
func (m *Minio) ObjectURL(bucket, path string) string {
	return m.publicURL + "/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

// UploadMany uploads all files concurrently. When any of them fails,
// the ones already uploaded are removed. On success the returned func
// removes every uploaded file, for callers that fail afterwards.
func (m *Minio) UploadMany(ctx context.Context, bucket string, files []types.Upload) (func(), error) {
	if len(files) == 0 {
		return func() {}, nil
	}

	var (
		mu           sync.Mutex
		cleanupFuncs []func()
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, file := range files {
		g.Go(func() error {
			cleanup, err := m.Upload(gctx, bucket, file)
			if err != nil {
				return fmt.Errorf("upload %s failed: %w", file.Path, err)
			}

			mu.Lock()
			cleanupFuncs = append(cleanupFuncs, cleanup)
			mu.Unlock()
			return nil
		})
	}

	cleanup := func() {
		mu.Lock()
		fns := cleanupFuncs
		mu.Unlock()

		var wg sync.WaitGroup
		for _, fn := range fns {
			wg.Go(fn)
		}
		wg.Wait()
	}

	if err := g.Wait(); err != nil {
		go cleanup()
		return nil, fmt.Errorf("upload group failed: %w", err)
	}

	return cleanup, nil
}

func (m *Minio) Upload(ctx context.Context, bucket string, file types.Upload) (func(), error) {
	info, err := m.client.PutObject(ctx, bucket, file.Path, file.Reader(), int64(file.FileSize), minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(m.baseCtx, m.cleanupTimeout)
		defer cancel()

		if err := m.client.RemoveObject(ctx, bucket, file.Path, minio.RemoveObjectOptions{
			VersionID: info.VersionID,
		}); err != nil {
			select {
			case m.errChan <- fmt.Errorf("remove object %s: %w", file.Path, err):
			default:
			}
		}
	}, nil
}

// CreateReadOnlyBucket creates a bucket, if needed,
// with anonymous read-only access.
func (m *Minio) CreateReadOnlyBucket(ctx context.Context, bucketName string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("check bucket exists: %w", err)
	}

	if !exists {
		err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}

	readOnlyPolicy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": "*",
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, bucketName)

	err = m.client.SetBucketPolicy(ctx, bucketName, readOnlyPolicy)
	if err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}

	return nil
}
