package supabase

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

type fileStorage struct{ c *Client }

// Upload stores the file under <user id>/<uuid><ext> and returns that path
// as the file id.
func (f *fileStorage) Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error) {
	api, uid, err := f.c.authed(ctx)
	if err != nil {
		return "", err
	}

	fileId := uid + "/" + uuid.NewString() + strings.ToLower(path.Ext(name))
	upsert := false
	_, err = api.Storage.UploadFile(f.c.cfg.StorageBucket, fileId, data, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", err
	}
	return fileId, nil
}

func (f *fileStorage) Delete(ctx context.Context, fileId string) error {
	api, _, err := f.c.authed(ctx)
	if err != nil {
		return err
	}
	_, err = api.Storage.RemoveFile(f.c.cfg.StorageBucket, []string{fileId})
	return err
}

func (f *fileStorage) ViewURL(fileId string) string {
	f.c.mu.RLock()
	api := f.c.api
	f.c.mu.RUnlock()
	if api == nil {
		return ""
	}
	return api.Storage.GetPublicUrl(f.c.cfg.StorageBucket, fileId).SignedURL
}
