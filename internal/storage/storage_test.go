package storage

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/logger"
)

func TestObjectKey(t *testing.T) {
	key, err := objectKey("owner-1", CategoryProfileImages, ".PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "users/owner-1/profile-images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestObjectKey_Rejects(t *testing.T) {
	tests := []struct {
		name, owner, category, ext string
	}{
		{"missing extension", "o", CategoryDogImages, ""},
		{"dot only", "o", CategoryDogImages, "."},
		{"traversal owner", "../etc", CategoryDogImages, "png"},
		{"slash in extension", "o", CategoryDogImages, "png/x"},
		{"html extension", "o", CategoryDogImages, "html"},
		{"svg extension", "o", CategoryProfileImages, "svg"},
		{"script extension", "o", CategoryProfileImages, "js"},
		{"empty category", "o", "", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := objectKey(tt.owner, tt.category, tt.ext)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestObjectKey_ImageExtensions(t *testing.T) {
	for _, ext := range []string{"png", "JPG", ".jpeg", "gif", "webp"} {
		_, err := objectKey("o", CategoryDogImages, ext)
		assert.NoError(t, err, ext)
	}
}

func TestMissingExtensionMessage(t *testing.T) {
	_, err := objectKey("o", CategoryProfileImages, "")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Image is missing a path extension", appErr.Message)
}

func TestLocal_Store(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, "http://localhost:8080/", logger.Discard())

	loc, err := store.Store(context.Background(), "owner-1", CategoryDogImages, []byte("woof"), "jpg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(loc, "http://localhost:8080/users/owner-1/images/"))

	rel := strings.TrimPrefix(loc, "http://localhost:8080/")
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "woof", string(data))
}

func TestLocal_StoreMissingExtensionWritesNothing(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, "http://localhost", logger.Discard())

	_, err := store.Store(context.Background(), "owner-1", CategoryDogImages, []byte("x"), "")
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemory_StoreAndGet(t *testing.T) {
	m := NewMemory()
	loc, err := m.Store(context.Background(), "o", CategoryProfileImages, []byte{1, 2}, "png")
	require.NoError(t, err)

	got, ok := m.Get(loc)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, got)

	_, ok = m.Get("memory://nope")
	assert.False(t, ok)
}

type fakeObjectClient struct {
	bucket, key string
	opts        minio.PutObjectOptions
	body        []byte
	err         error
	exists      bool
}

func (f *fakeObjectClient) PutObject(_ context.Context, bucket, key string, r *bytes.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.key, f.opts = bucket, key, opts
	f.body = make([]byte, size)
	_, _ = r.Read(f.body)
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeObjectClient) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeObjectClient) EndpointURL() *url.URL {
	return &url.URL{Scheme: "http", Host: "minio:9000"}
}

func TestMinIO_Store(t *testing.T) {
	client := &fakeObjectClient{}
	m := &MinIO{client: client, bucket: "dogpatch", logger: logger.Discard()}
	png := []byte("\x89PNG\r\n\x1a\n0000")

	loc, err := m.Store(context.Background(), "owner-1", CategoryDogImages, png, "png")
	require.NoError(t, err)

	assert.Equal(t, "dogpatch", client.bucket)
	assert.True(t, strings.HasPrefix(client.key, "users/owner-1/images/"))
	assert.Equal(t, "image/png", client.opts.ContentType)
	assert.Equal(t, png, client.body)
	assert.Equal(t, "http://minio:9000/dogpatch/"+client.key, loc)
}

func TestMinIO_StoreError(t *testing.T) {
	m := &MinIO{client: &fakeObjectClient{err: errors.New("denied")}, bucket: "b", logger: logger.Discard()}

	_, err := m.Store(context.Background(), "o", CategoryDogImages, []byte("x"), "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload object")
}

func TestMinIO_Ping(t *testing.T) {
	m := &MinIO{client: &fakeObjectClient{exists: true}, bucket: "b", logger: logger.Discard()}
	assert.NoError(t, m.Ping(context.Background()))

	m.client = &fakeObjectClient{exists: false}
	assert.Error(t, m.Ping(context.Background()))
}
