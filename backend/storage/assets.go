package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"courseplatform/backend/utils"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
	AssetPDF   AssetType = "pdf"
	AssetZip   AssetType = "zip"
)

func ParseAssetType(s string) (AssetType, error) {
	switch t := AssetType(strings.ToLower(strings.TrimSpace(s))); t {
	case AssetImage, AssetVideo, AssetPDF, AssetZip:
		return t, nil
	}
	return "", utils.Validation("Unknown asset type %q", s)
}

// Resolver maps an (asset type, entity id) pair to a public URL. A missing
// asset is a nil URL, not an error.
type Resolver interface {
	Resolve(ctx context.Context, t AssetType, id string) (*string, error)
}

// Nop resolves nothing. It is used when no bucket is configured.
type Nop struct{}

func (Nop) Resolve(context.Context, AssetType, string) (*string, error) { return nil, nil }

// GCSResolver looks assets up in a Cloud Storage bucket under
// <type>/<id>.
type GCSResolver struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	log     *utils.Logger

	probe func(ctx context.Context, key string) error
}

func NewGCSResolver(ctx context.Context, bucket, baseURL, credentialsFile string, log *utils.Logger) (*GCSResolver, error) {
	if bucket == "" {
		return nil, errors.New("asset bucket is not configured")
	}
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadOnly)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	r := newResolver(bucket, baseURL, log)
	r.client = client
	r.probe = func(ctx context.Context, key string) error {
		_, err := client.Bucket(bucket).Object(key).Attrs(ctx)
		return err
	}
	r.log.Info("asset store initialized", "bucket", bucket, "public_base_url", r.baseURL)
	return r, nil
}

func newResolver(bucket, baseURL string, log *utils.Logger) *GCSResolver {
	if log == nil {
		log = utils.NopLogger()
	}
	return &GCSResolver{
		bucket:  bucket,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		log:     log.With("service", "assets"),
	}
}

// normalizeID trims whitespace and outer slashes. Inner slashes are kept as
// path separators in both the object key and the public URL.
func normalizeID(id string) string {
	return strings.Trim(strings.TrimSpace(id), "/")
}

func objectKey(t AssetType, id string) string {
	return string(t) + "/" + normalizeID(id)
}

// PublicURL builds the URL of an object without checking it exists. It
// addresses the same object as the key Resolve probes.
func (r *GCSResolver) PublicURL(t AssetType, id string) string {
	segments := strings.Split(objectKey(t, id), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s/%s", r.baseURL, r.bucket, strings.Join(segments, "/"))
}

func (r *GCSResolver) Resolve(ctx context.Context, t AssetType, id string) (*string, error) {
	if normalizeID(id) == "" {
		return nil, utils.Validation("Asset id is required")
	}
	err := r.probe(ctx, objectKey(t, id))
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		r.log.Warn("asset lookup failed", "type", t, "id", id, "error", err)
		return nil, utils.Network("Could not reach the asset store", err)
	}
	u := r.PublicURL(t, id)
	return &u, nil
}

func (r *GCSResolver) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

type Request struct {
	Type AssetType `json:"type"`
	ID   string    `json:"id"`
}

// Result is the outcome for one request. A failed lookup leaves URL nil and
// sets Error; it does not affect the other results.
type Result struct {
	Type  AssetType `json:"type"`
	ID    string    `json:"id"`
	URL   *string   `json:"url"`
	Error string    `json:"error,omitempty"`
}

// ResolveMany resolves every request concurrently, at most limit at a time.
// Results keep request order.
func ResolveMany(ctx context.Context, r Resolver, reqs []Request, limit int) []Result {
	out := make([]Result, len(reqs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res := Result{Type: req.Type, ID: req.ID}
			u, err := r.Resolve(ctx, req.Type, req.ID)
			if err != nil {
				res.Error = failureMessage(err)
			} else {
				res.URL = u
			}
			out[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func failureMessage(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Could not resolve asset"
}
