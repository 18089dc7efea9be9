package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDetectType(t *testing.T) {
	ct, err := DetectType(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = DetectType([]byte("hello world"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestNewKey(t *testing.T) {
	key := NewKey(`C:\photos\My Scrub Top.PNG`, "image/png")
	assert.True(t, strings.HasPrefix(key, "my-scrub-top-"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)

	assert.True(t, strings.HasPrefix(NewKey("", "image/jpeg"), "image-"))
}

func TestUploader_Validation(t *testing.T) {
	u := NewUploader(10, zap.NewNop())

	_, err := u.Upload(context.Background(), "a.png", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = u.Upload(context.Background(), "a.png", pngHeader)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploader_FallsBackThroughStores(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("no credentials"))

	dir := t.TempDir()
	u := NewUploader(1<<20, zap.NewNop(),
		NewS3Store(putter, "bucket", ""),
		NewLocalStore(dir, "/uploads/"),
	)

	res, err := u.Upload(context.Background(), "top.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "local", res.Storage)
	assert.Equal(t, "/uploads/"+res.Key, res.URL)

	written, err := os.ReadFile(filepath.Join(dir, res.Key))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)
	putter.AssertExpectations(t)
}

func TestUploader_S3(t *testing.T) {
	putter := new(mockPutter)
	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" &&
			strings.HasPrefix(aws.ToString(in.Key), "uploads/top-") &&
			aws.ToString(in.ContentType) == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil)

	u := NewUploader(0, zap.NewNop(), NewS3Store(putter, "bucket", "https://cdn.example.com/"))
	res, err := u.Upload(context.Background(), "top.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "s3", res.Storage)
	assert.Equal(t, "https://cdn.example.com/uploads/"+res.Key, res.URL)
}

func TestUploader_DataURIWhenNothingWorks(t *testing.T) {
	u := NewUploader(0, zap.NewNop())
	res, err := u.Upload(context.Background(), "top.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "inline", res.Storage)
	assert.True(t, strings.HasPrefix(res.URL, "data:image/png;base64,"))
}
