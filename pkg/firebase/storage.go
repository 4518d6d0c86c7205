package firebase

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// StorageUploader writes objects to the default Firebase Storage bucket and
// returns token-protected download URLs
type StorageUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewStorageUploader opens the default bucket of the app
func NewStorageUploader(ctx context.Context, app *App) (*StorageUploader, error) {
	client, err := app.FirebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error opening storage bucket: %w", err)
	}
	return &StorageUploader{bucket: bucket, bucketName: app.Bucket}, nil
}

// Upload stores r under name and returns its public download URL
func (u *StorageUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	token := uuid.NewString()

	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return DownloadURL(u.bucketName, name, token), nil
}

// DownloadURL builds the Firebase Storage download URL of an object
func DownloadURL(bucket, name, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(name), url.QueryEscape(token))
}
