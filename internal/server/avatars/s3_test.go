package avatars

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emergqr/emergqr/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	err  error
	Last *s3.PutObjectInput
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.Last = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPut_BuildsRequestAndURL(t *testing.T) {
	p := &fakePutter{}
	s := &S3Store{client: p, bucket: "avatars", endpoint: "http://minio:9000/"}

	url, err := s.Put(context.Background(), "clients/u/a.png", "image/png", []byte{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "http://minio:9000/avatars/clients/u/a.png", url)
	assert.Equal(t, "avatars", aws.ToString(p.Last.Bucket))
	assert.Equal(t, "clients/u/a.png", aws.ToString(p.Last.Key))
	assert.Equal(t, "image/png", aws.ToString(p.Last.ContentType))
	assert.Equal(t, int64(2), aws.ToInt64(p.Last.ContentLength))
}

func TestPut_Error(t *testing.T) {
	s := &S3Store{client: &fakePutter{err: errors.New("denied")}, bucket: "b", endpoint: "http://x"}

	_, err := s.Put(context.Background(), "k", "image/png", []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestNewS3Store_PathStyleUpload(t *testing.T) {
	var (
		mu      sync.Mutex
		gotPath   string
		gotMethod string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		gotPath, gotMethod = r.URL.Path, r.Method
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	s, err := NewS3Store(context.Background(), &config.Config{
		S3RootUser:     "user",
		S3RootPassword: "password",
		S3Bucket:       "avatars",
		S3Region:       "us-east-1",
		S3BaseEndpoint: srv.URL,
	})
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "clients/u/a.png", "image/png", []byte("png"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/avatars/clients/u/a.png", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, srv.URL+"/avatars/clients/u/a.png", url)
}
