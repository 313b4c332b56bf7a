package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nfnt/resize"

	"restaurant/config"
)

const (
	MaxImageSize      = 5 * 1024 * 1024
	compressThreshold = 1 * 1024 * 1024
	maxImageWidth     = 800
)

var (
	ErrImageTooLarge   = errors.New("file size exceeds the 5MB limit")
	ErrUnsupportedType = errors.New("only jpeg and png images are allowed")
)

// ImageStore persists uploaded pictures and returns the URL they are served
// from.
type ImageStore interface {
	Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error)
}

// NewImageStore picks object storage when it is configured and the local
// upload directory otherwise.
func NewImageStore(s *config.Settings) (ImageStore, error) {
	if s.S3.Enabled() {
		return NewS3Images(s.S3)
	}
	return &DiskImages{Dir: s.UploadDir, BaseURL: "/uploads"}, nil
}

type preparedImage struct {
	data        []byte
	ext         string
	contentType string
}

// prepareImage checks the upload and shrinks anything over 1MB to 800px wide
// JPEG.
func prepareImage(file *multipart.FileHeader) (*preparedImage, error) {
	if file.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	switch {
	case ext == ".png" || contentType == "image/png":
		ext, contentType = ".png", "image/png"
	case ext == ".jpg" || ext == ".jpeg" || contentType == "image/jpeg":
		ext, contentType = ".jpg", "image/jpeg"
	default:
		return nil, ErrUnsupportedType
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if file.Size <= compressThreshold {
		return &preparedImage{data: data, ext: ext, contentType: contentType}, nil
	}

	var img image.Image
	if contentType == "image/png" {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	resized := resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return &preparedImage{data: buf.Bytes(), ext: ".jpg", contentType: "image/jpeg"}, nil
}

func objectName(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

type DiskImages struct {
	Dir     string
	BaseURL string
}

func (d *DiskImages) Save(_ context.Context, folder string, file *multipart.FileHeader) (string, error) {
	img, err := prepareImage(file)
	if err != nil {
		return "", err
	}

	name := objectName(folder, img.ext)
	full := filepath.Join(d.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(full, img.data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return d.BaseURL + "/" + name, nil
}

type S3Images struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewS3Images(s config.S3Settings) (*S3Images, error) {
	client, err := minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	publicURL := s.PublicURL
	if publicURL == "" {
		scheme := "http"
		if s.Secure {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, s.Endpoint, s.Bucket)
	}
	return &S3Images{client: client, bucket: s.Bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *S3Images) Save(ctx context.Context, folder string, file *multipart.FileHeader) (string, error) {
	img, err := prepareImage(file)
	if err != nil {
		return "", err
	}

	name := objectName(folder, img.ext)
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(img.data), int64(len(img.data)), minio.PutObjectOptions{
		ContentType: img.contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return s.publicURL + "/" + name, nil
}
