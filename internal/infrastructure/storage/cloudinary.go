package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("file storage is not configured")

// Config holds the Cloudinary credentials and the root folder for uploads.
type Config struct {
	CloudName  string
	APIKey     string
	APISecret  string
	RootFolder string
}

// Enabled reports whether every credential is present.
func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// CloudinaryUploader stores files on Cloudinary.
type CloudinaryUploader struct {
	cld  *cloudinary.Cloudinary
	root string
}

func NewCloudinaryUploader(cfg Config) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, root: cfg.RootFolder}, nil
}

// Upload stores r under folder and returns its HTTPS URL. The resource type
// is detected, so images, audio and documents share one path.
func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       u.folder(folder),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

func (u *CloudinaryUploader) folder(folder string) string {
	if u.root == "" {
		return folder
	}
	return path.Join(u.root, folder)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}
