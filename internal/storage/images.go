package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"marketplace-service/internal/observability"
)

// MaxImagesPerListing caps the image list on create and update.
const MaxImagesPerListing = 5

var (
	ErrTooManyImages = fmt.Errorf("at most %d images per listing", MaxImagesPerListing)
	ErrInvalidImage  = errors.New("invalid image format")

	dataURIPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)
)

// publicMarker is the segment that separates a public URL from the
// relative blob path, e.g. "https://host/storage/listings/x.png".
const publicMarker = "/storage/"

// Normalizer turns the loosely-typed incoming image list into the single
// internal representation: an ordered list of relative blob paths. Each
// entry is classified exactly once at the boundary as either a data URI
// upload or an already-stored path.
type Normalizer struct {
	store  BlobStore
	prefix string
}

// NewNormalizer constructs a Normalizer writing under prefix (e.g. "listings").
func NewNormalizer(store BlobStore, prefix string) *Normalizer {
	return &Normalizer{store: store, prefix: strings.Trim(prefix, "/")}
}

// Result carries the normalized paths plus the subset freshly uploaded in
// this call. Orphan cleanup on update only runs when Uploaded is non-empty.
type Result struct {
	Paths    []string
	Uploaded []string
}

// Normalize validates, decodes, and persists the incoming entries. Any
// failure aborts the whole batch: blobs already written in this call are
// removed best-effort so no partial image set survives.
func (n *Normalizer) Normalize(entries []string) (Result, error) {
	if len(entries) > MaxImagesPerListing {
		return Result{}, ErrTooManyImages
	}

	var res Result
	for _, entry := range entries {
		path, uploaded, err := n.normalizeOne(strings.TrimSpace(entry))
		if err != nil {
			n.rollback(res.Uploaded)
			return Result{}, err
		}
		res.Paths = append(res.Paths, path)
		if uploaded {
			res.Uploaded = append(res.Uploaded, path)
		}
	}
	return res, nil
}

func (n *Normalizer) normalizeOne(entry string) (string, bool, error) {
	switch {
	case dataURIPrefix.MatchString(entry):
		path, err := n.saveDataURI(entry)
		return path, err == nil, err

	case strings.Contains(entry, publicMarker):
		rel := entry[strings.Index(entry, publicMarker)+len(publicMarker):]
		if rel == "" {
			return "", false, ErrInvalidImage
		}
		return rel, false, nil

	case entry != "" && !strings.Contains(entry, ":"):
		return strings.TrimPrefix(entry, "/"), false, nil

	default:
		return "", false, ErrInvalidImage
	}
}

func (n *Normalizer) saveDataURI(entry string) (string, error) {
	comma := strings.Index(entry, ",")
	payload, err := base64.StdEncoding.DecodeString(entry[comma+1:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	mtype := mimetype.Detect(payload)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: payload is %s", ErrInvalidImage, mtype.String())
	}

	path := n.prefix + "/" + uuid.NewString() + mtype.Extension()
	if err := n.store.Put(path, payload); err != nil {
		return "", err
	}
	observability.IncBlobWrite()
	return path, nil
}

func (n *Normalizer) rollback(uploaded []string) {
	for _, path := range uploaded {
		if err := n.store.Delete(path); err != nil {
			observability.IncBlobDeleteError()
			log.Printf("image rollback delete failed path=%s: %v", path, err)
		}
	}
}

// CleanupOrphans deletes previously stored blobs that are absent from the
// kept list. Failures are logged and counted, never propagated; an orphaned
// blob is a tolerable outcome.
func (n *Normalizer) CleanupOrphans(previous, kept []string) {
	for _, path := range previous {
		if lo.Contains(kept, path) {
			continue
		}
		if err := n.store.Delete(path); err != nil {
			observability.IncBlobDeleteError()
			log.Printf("orphan blob delete failed path=%s: %v", path, err)
			continue
		}
		observability.IncBlobDelete()
	}
}
