package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/google/uuid"

	apperrors "go-content-inspector/internal/errors"
)

// ObjectPage is one page of a key listing.
type ObjectPage struct {
	Keys      []string
	NextToken string
}

// ObjectStore is the upload target for user files.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	List(ctx context.Context, continuationToken string, maxResults int32) (*ObjectPage, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AzureBlobOptions configures AzureBlobStore.
type AzureBlobOptions struct {
	AccountName string
	AccountKey  string
	// ServiceURL overrides the public endpoint, e.g. for Azurite.
	ServiceURL string
	Container  string
}

// AzureBlobStore implements ObjectStore on a single blob container.
type AzureBlobStore struct {
	client    *azblob.Client
	container string
}

func NewAzureBlobStore(opts AzureBlobOptions) (*AzureBlobStore, error) {
	if opts.Container == "" {
		return nil, fmt.Errorf("blob container name is required")
	}

	credential, err := azblob.NewSharedKeyCredential(opts.AccountName, opts.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	serviceURL := opts.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", opts.AccountName)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &AzureBlobStore{client: client, container: opts.Container}, nil
}

func (s *AzureBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	var opts *azblob.UploadStreamOptions
	if contentType != "" {
		opts = &azblob.UploadStreamOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		}
	}

	if _, err := s.client.UploadStream(ctx, s.container, key, body, opts); err != nil {
		return s.translate(err, "upload failed")
	}
	return nil
}

// List returns a single page of blob names. An empty continuationToken
// starts from the beginning; an empty NextToken marks the last page.
func (s *AzureBlobStore) List(ctx context.Context, continuationToken string, maxResults int32) (*ObjectPage, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if continuationToken != "" {
		opts.Marker = &continuationToken
	}
	if maxResults > 0 {
		opts.MaxResults = &maxResults
	}

	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	page := &ObjectPage{Keys: []string{}}
	if !pager.More() {
		return page, nil
	}

	resp, err := pager.NextPage(ctx)
	if err != nil {
		return nil, s.translate(err, "list failed")
	}

	if resp.Segment != nil {
		for _, item := range resp.Segment.BlobItems {
			if item != nil && item.Name != nil {
				page.Keys = append(page.Keys, *item.Name)
			}
		}
	}
	if resp.NextMarker != nil {
		page.NextToken = *resp.NextMarker
	}
	return page, nil
}

// Presign returns a read-only SAS URL for key valid for ttl. It is computed
// locally from the shared key and performs no network call.
func (s *AzureBlobStore) Presign(_ context.Context, key string, ttl time.Duration) (string, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)

	expiry := time.Now().UTC().Add(ttl)
	signed, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, expiry, nil)
	if err != nil {
		return "", apperrors.NewInternalError("failed to presign object", err)
	}
	return signed, nil
}

func (s *AzureBlobStore) translate(err error, message string) error {
	if bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return apperrors.NewInvalidInputError(fmt.Sprintf("container %s does not exist", s.container), err)
	}
	return apperrors.NewStorageUnavailableError(message, err)
}

// NewObjectKey returns a collision-free key that keeps the original extension.
func NewObjectKey(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}
