package enhance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxSourceBytes caps how much of one source is read.
const maxSourceBytes = 8 << 20

const s3Scheme = "s3://"

// ObjectStoreConfig configures the S3-compatible store behind s3:// sources.
type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// NewObjectStore creates a MinIO client, or returns nil when no endpoint
// is configured.
func NewObjectStore(cfg ObjectStoreConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return client, nil
}

// Fetcher reads the raw text of a source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// SourceFetcher reads local files, http(s) URLs and s3://bucket/key objects.
type SourceFetcher struct {
	HTTP    *http.Client
	Objects *minio.Client
}

// NewSourceFetcher creates a fetcher. objects may be nil, in which case
// s3:// sources fail.
func NewSourceFetcher(objects *minio.Client) *SourceFetcher {
	return &SourceFetcher{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Objects: objects,
	}
}

func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return f.fetchHTTP(ctx, source)
	case strings.HasPrefix(source, s3Scheme):
		return f.fetchObject(ctx, source)
	default:
		return readLimited(os.Open(source))
	}
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
}

func (f *SourceFetcher) fetchObject(ctx context.Context, source string) ([]byte, error) {
	if f.Objects == nil {
		return nil, errors.New("object store not configured")
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(source, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("malformed object source %q", source)
	}
	obj, err := f.Objects.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return readLimited(obj, nil)
}

func readLimited(rc io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxSourceBytes))
}

// ThemeSource names the theme-specific source under base, e.g.
// "data/haunted-lighthouse.txt" or "s3://rooms/haunted-lighthouse.txt".
// An empty base or a theme that slugs to nothing yields "".
func ThemeSource(base, theme string) string {
	name := slug.Make(theme)
	if base == "" || name == "" {
		return ""
	}
	name += ".txt"
	if strings.Contains(base, "://") {
		return strings.TrimRight(base, "/") + "/" + name
	}
	return filepath.Join(base, name)
}
