package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce/adapters/media"
)

// pngHeader 足以讓 http.DetectContentType 判斷為 image/png
var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "bytes", bytes: 500, want: "500 bytes"},
		{name: "KB", bytes: 1024 * 2, want: "2.00 KB"},
		{name: "MB", bytes: 1024 * 1024 * 5, want: "5.00 MB"},
		{name: "GB", bytes: 1024 * 1024 * 1024 * 4, want: "4.00 GB"},
		{name: "TB", bytes: 1024 * 1024 * 1024 * 1024 * 5, want: "5.00 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.FormatBytes(tt.bytes))
		})
	}
}

func TestMaxSizeReader(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		maxSize    int64
		wantN      int
		wantErrMsg string
	}{
		{
			name:    "讀取小於限制的內容",
			input:   []byte("hello"),
			maxSize: 10,
			wantN:   5,
		},
		{
			name:       "讀取超過限制的內容",
			input:      []byte("hello world"),
			maxSize:    5,
			wantN:      5,
			wantErrMsg: "reach limit of 5 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := media.NewMaxSizeReader(bytes.NewReader(tt.input), tt.maxSize)
			buf := make([]byte, len(tt.input))
			n, err := reader.Read(buf)

			assert.Equal(t, tt.wantN, n)
			if tt.wantErrMsg != "" {
				assert.EqualError(t, err, tt.wantErrMsg)
			} else {
				assert.True(t, err == nil || err == io.EOF)
			}
		})
	}
}

func TestReadImage(t *testing.T) {
	tests := []struct {
		name        string
		content     []byte
		maxSize     int64
		wantExt     string
		wantErrType any
	}{
		{
			name:    "valid PNG image",
			content: pngHeader,
			maxSize: media.MaxImageSize,
			wantExt: "png",
		},
		{
			name:        "too large",
			content:     append(append([]byte{}, pngHeader...), make([]byte, 64)...),
			maxSize:     16,
			wantErrType: &media.ReachLimitError{},
		},
		{
			name:        "not an image",
			content:     []byte("<script>alert(1)</script>"),
			maxSize:     media.MaxImageSize,
			wantErrType: &media.UnsupportedImageError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image, err := media.ReadImage(bytes.NewReader(tt.content), tt.maxSize)
			switch tt.wantErrType.(type) {
			case *media.ReachLimitError:
				var target *media.ReachLimitError
				assert.True(t, errors.As(err, &target))
			case *media.UnsupportedImageError:
				var target *media.UnsupportedImageError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, "text/html; charset=utf-8", target.MIMEType)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantExt, image.Extension)
				assert.Equal(t, "image/png", image.ContentType)
			}
		})
	}
}

func TestCheckSecureImageAndGetExtension(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		wantOk   bool
		wantExt  string
	}{
		{name: "valid JPEG image", mimeType: "image/jpeg", wantOk: true, wantExt: "jpeg"},
		{name: "valid PNG image", mimeType: "image/png", wantOk: true, wantExt: "png"},
		{name: "svg may contain scripts", mimeType: "image/svg+xml", wantOk: false, wantExt: ""},
		{name: "invalid image type", mimeType: "application/pdf", wantOk: false, wantExt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOk, gotExt := media.CheckSecureImageAndGetExtension(tt.mimeType)
			assert.Equal(t, tt.wantOk, gotOk)
			assert.Equal(t, tt.wantExt, gotExt)
		})
	}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	local := media.NewLocal(root)

	ref, err := local.Save(ctx, "profile_images", "png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "profile_images/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.Equal(t, "/media/"+ref, local.URL(ref))

	content, err := os.ReadFile(local.Path(ref))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, content)

	// 子目錄不會被列出
	require.NoError(t, os.MkdirAll(filepath.Join(root, "profile_images", "nested"), 0o755))
	paths, err := local.List(ctx, "profile_images")
	require.NoError(t, err)
	assert.Equal(t, []string{local.Path(ref)}, paths)

	_, err = local.List(ctx, "auction_images")
	assert.ErrorIs(t, err, media.ErrDirectoryNotFound)

	require.NoError(t, local.Remove(ctx, local.Path(ref)))
	assert.ErrorIs(t, local.Remove(ctx, local.Path(ref)), fs.ErrNotExist)
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	storage, err := media.NewS3Storage(client, "bucket", "media", "https://cdn.example.com")
	require.NoError(t, err)

	ref, err := storage.Save(ctx, "auction_images", "png", "image/png", pngHeader)
	require.NoError(t, err)
	key := storage.Path(ref)
	assert.Equal(t, "media/"+ref, key)
	assert.Equal(t, "https://cdn.example.com/media/"+ref, storage.URL(ref))
	assert.Equal(t, "image/png", client.contentTypes[key])

	client.objects["media/auction_images/nested/x.png"] = nil
	keys, err := storage.List(ctx, "auction_images")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{key}, keys)

	_, err = storage.List(ctx, "profile_images")
	assert.ErrorIs(t, err, media.ErrDirectoryNotFound)

	require.NoError(t, storage.Remove(ctx, key))
	assert.ErrorIs(t, storage.Remove(ctx, key), fs.ErrNotExist)

	client.forbidden = true
	assert.ErrorIs(t, storage.Remove(ctx, "media/auction_images/nested/x.png"), fs.ErrPermission)
}
