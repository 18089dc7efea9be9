// Package storage saves uploaded images. Stores are tried in order; the last
// resort inlines the image as a data URI.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Store interface {
	Name() string
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type Result struct {
	URL     string `json:"url"`
	Key     string `json:"key"`
	Storage string `json:"storage"`
	Size    int    `json:"size"`
}

type Uploader struct {
	stores   []Store
	maxBytes int64
	log      *zap.Logger
}

func NewUploader(maxBytes int64, log *zap.Logger, stores ...Store) *Uploader {
	return &Uploader{stores: stores, maxBytes: maxBytes, log: log}
}

// DetectType sniffs the image type from the payload, ignoring what the client
// claims.
func DetectType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if _, ok := allowedTypes[contentType]; !ok {
		return "", ErrUnsupportedType
	}
	return contentType, nil
}

func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return nil, ErrTooLarge
	}
	contentType, err := DetectType(data)
	if err != nil {
		return nil, err
	}

	key := NewKey(filename, contentType)
	for _, store := range u.stores {
		url, err := store.Save(ctx, key, contentType, data)
		if err != nil {
			u.log.Warn("Upload store failed, trying next",
				zap.String("storage", store.Name()), zap.String("key", key), zap.Error(err))
			continue
		}
		return &Result{URL: url, Key: key, Storage: store.Name(), Size: len(data)}, nil
	}

	u.log.Warn("All upload stores failed, returning data URI", zap.String("key", key))
	return &Result{URL: DataURI(contentType, data), Key: key, Storage: "inline", Size: len(data)}, nil
}

// NewKey builds a unique object key that keeps a cleaned-up stem of the
// original file name.
func NewKey(filename, contentType string) string {
	stem := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), path.Ext(filename))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, stem)
	stem = strings.Trim(stem, "-")
	if len(stem) > 40 {
		stem = stem[:40]
	}
	if stem == "" || stem == "." {
		stem = "image"
	}
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], allowedTypes[contentType])
}

func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
