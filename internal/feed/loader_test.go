package feed

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const feedA = `{"id":"a1","name":"Chicken Breast","category":"meat","price":8.49,"calories":110,"protein":26,"store_id":"heb-heights"}
{"id":"a2","name":"Greek Yogurt","category":"dairy","price":5.99,"calories":100,"protein":18,"store_id":"heb-heights"}
`

const feedB = `
{"id":"b1","name":"Firm Tofu","category":"plant","price":2.49,"calories":80,"protein":9,"store_id":"aldi-ost"}
{"id":"a2","name":"Greek Yogurt 0%","category":"dairy","price":4.99,"calories":90,"protein":18,"store_id":"aldi-ost"}
`

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestDecode(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		products, err := Decode(strings.NewReader(feedA))
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "a1", products[0].ID)
		assert.Equal(t, models.CategoryMeat, products[0].Category)
		assert.InDelta(t, 26.0/8.49, products[0].ProteinPerDollar, 1e-9)
		assert.InDelta(t, 26.0/110*100, products[0].ProteinPer100Cal, 1e-9)
	})

	t.Run("gzip", func(t *testing.T) {
		products, err := Decode(bytes.NewReader(gzipBytes(t, feedB)))
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "b1", products[0].ID)
	})

	t.Run("empty", func(t *testing.T) {
		products, err := Decode(strings.NewReader(""))
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"id":"x"}` + "\n{not json}\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"name":"nameless"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product id is required")
	})
}

func TestLoader_Load(t *testing.T) {
	t.Run("merges sources last wins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(gzipBytes(t, feedB))
		}))
		defer srv.Close()

		fileSrc := writeFile(t, "a.jsonl", []byte(feedA))
		loader := NewLoader(WithHTTPClient(srv.Client()))

		products, err := loader.Load(context.Background(), []string{fileSrc, srv.URL + "/b.jsonl.gz"})
		require.NoError(t, err)

		ids := make([]string, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []string{"a1", "a2", "b1"}, ids)
		assert.Equal(t, "Greek Yogurt 0%", products[1].Name)
		assert.Equal(t, "aldi-ost", products[1].StoreID)
	})

	t.Run("s3 source", func(t *testing.T) {
		client := &fakeS3{objects: map[string][]byte{"feeds/houston/a.jsonl.gz": gzipBytes(t, feedA)}}
		loader := NewLoader(WithS3Client(client))

		products, err := loader.Load(context.Background(), []string{"s3://feeds/houston/a.jsonl.gz"})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("file url prefix", func(t *testing.T) {
		path := writeFile(t, "a.jsonl", []byte(feedA))

		products, err := NewLoader().Load(context.Background(), []string{"file://" + path})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), []string{srv.URL})
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("one failing source fails the load", func(t *testing.T) {
		fileSrc := writeFile(t, "a.jsonl", []byte(feedA))

		_, err := NewLoader().Load(context.Background(), []string{fileSrc, "/non/existent/feed.jsonl"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source 2")
	})

	t.Run("s3 without client", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), []string{"s3://feeds/a.jsonl"})
		assert.ErrorIs(t, err, ErrS3NotConfigured)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feedA))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLoader(WithHTTPClient(srv.Client())).Load(ctx, []string{srv.URL})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseS3Source(t *testing.T) {
	tests := []struct {
		src        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"s3://feeds/houston/products.jsonl.gz", "feeds", "houston/products.jsonl.gz", false},
		{"s3://feeds/", "", "", true},
		{"s3:///key", "", "", true},
		{"https://feeds/key", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			bucket, key, err := ParseS3Source(tt.src)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidS3Source)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
