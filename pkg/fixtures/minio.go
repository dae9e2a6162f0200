package fixtures

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

// MinioConfig locates a fixture bundle in MinIO/S3 compatible storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Prefix is prepended to each object name, e.g. "fixtures/v2/".
	Prefix string
	UseSSL bool
	// Region skips the bucket location lookup when set.
	Region string
}

// MinioSource reads <prefix><collection>.json objects from a bucket.
type MinioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSource builds the client. It does not touch the network.
func NewMinioSource(cfg MinioConfig) (*MinioSource, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("fixtures: minio bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinioSource{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Load fetches all collections concurrently; any failure fails the load.
func (m *MinioSource) Load(ctx context.Context) (Bundle, error) {
	var (
		mu sync.Mutex
		b  = make(Bundle, len(Collections))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range Collections {
		g.Go(func() error {
			raw, err := m.fetch(ctx, m.prefix+fileName(name))
			if err != nil {
				return fmt.Errorf("fetch fixture %s: %w", name, err)
			}
			mu.Lock()
			b[name] = raw
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *MinioSource) fetch(ctx context.Context, object string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return raw, nil
}
