package feed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/models"
)

var (
	ErrNoSources        = errors.New("no feed sources provided")
	ErrS3NotConfigured  = errors.New("s3 client not configured")
	ErrInvalidS3Source  = errors.New("invalid s3 source")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// maxLineSize bounds a single JSON line; product records are small
const maxLineSize = 1 << 20

// S3GetObjectAPI is the subset of the S3 client used to fetch feed objects
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads product feeds (JSON lines, optionally gzipped) from
// http(s) URLs, s3://bucket/key objects or local files
type Loader struct {
	httpClient *http.Client
	s3Client   S3GetObjectAPI
	logger     *slog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient overrides the client used for http(s) sources
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithS3Client enables s3:// sources
func WithS3Client(c S3GetObjectAPI) Option {
	return func(l *Loader) { l.s3Client = c }
}

// WithLogger sets the loader's logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a new feed loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		// Feeds can be large
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches every source concurrently and merges the results in source
// order. A product ID seen in a later source replaces the earlier record
// but keeps its position. Any failing source fails the whole load.
func (l *Loader) Load(ctx context.Context, sources []string) ([]models.Product, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([][]models.Product, len(sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range sources {
		g.Go(func() error {
			products, err := l.loadSource(gctx, src)
			if err != nil {
				return fmt.Errorf("failed to load source %d (%s): %w", i+1, src, err)
			}
			results[i] = products
			l.logger.Info("loaded product feed", "source", src, "products", len(products))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge(results), nil
}

func merge(results [][]models.Product) []models.Product {
	total := 0
	for _, r := range results {
		total += len(r)
	}

	merged := make([]models.Product, 0, total)
	index := make(map[string]int, total)
	for _, r := range results {
		for _, p := range r {
			if i, ok := index[p.ID]; ok {
				merged[i] = p
				continue
			}
			index[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged
}

func (l *Loader) loadSource(ctx context.Context, src string) ([]models.Product, error) {
	body, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return Decode(body)
}

func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.openHTTP(ctx, src)
	case strings.HasPrefix(src, "s3://"):
		return l.openS3(ctx, src)
	default:
		f, err := os.Open(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}
}

func (l *Loader) openHTTP(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, nil
}

func (l *Loader) openS3(ctx context.Context, src string) (io.ReadCloser, error) {
	if l.s3Client == nil {
		return nil, ErrS3NotConfigured
	}

	bucket, key, err := ParseS3Source(src)
	if err != nil {
		return nil, err
	}

	out, err := l.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

// ParseS3Source splits s3://bucket/key into its parts
func ParseS3Source(src string) (bucket, key string, err error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3Source, src)
	}

	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3Source, src)
	}
	return u.Host, key, nil
}

// Decode reads JSON-lines product records, transparently un-gzipping the
// stream when it starts with the gzip magic bytes. Blank lines are skipped.
func Decode(r io.Reader) ([]models.Product, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, _ := br.Peek(2); bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	products := make([]models.Product, 0)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var p models.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.ID == "" {
			return nil, fmt.Errorf("line %d: product id is required", line)
		}
		products = append(products, catalog.WithEfficiency(p))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return products, nil
}
