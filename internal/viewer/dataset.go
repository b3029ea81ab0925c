package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/3dmm/site/internal/metrics"
)

// DefaultBounds frames the camera when the dataset metadata is unavailable.
var DefaultBounds = BoundingBox{
	Min: Vec3{-50, -50, 0},
	Max: Vec3{50, 50, 30},
}

const maxMetadataBytes = 1 << 20

type octreeMetadata struct {
	BoundingBox struct {
		Min []float64 `json:"min"`
		Max []float64 `json:"max"`
	} `json:"boundingBox"`
}

// FetchBounds reads the bounding box from a streaming octree metadata.json.
func FetchBounds(ctx context.Context, client *http.Client, url string) (BoundingBox, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("build metadata request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BoundingBox{}, fmt.Errorf("fetch metadata: unexpected status %d", resp.StatusCode)
	}

	var meta octreeMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&meta); err != nil {
		return BoundingBox{}, fmt.Errorf("decode metadata: %w", err)
	}
	min, max := meta.BoundingBox.Min, meta.BoundingBox.Max
	if len(min) != 3 || len(max) != 3 {
		return BoundingBox{}, fmt.Errorf("decode metadata: boundingBox needs 3 components")
	}
	b := BoundingBox{
		Min: Vec3{min[0], min[1], min[2]},
		Max: Vec3{max[0], max[1], max[2]},
	}
	if !b.Valid() {
		return BoundingBox{}, fmt.Errorf("decode metadata: invalid bounding box %+v", b)
	}
	return b, nil
}

// fetchTimeout bounds one metadata fetch. The fetch is detached from the
// request that triggered it.
const fetchTimeout = 5 * time.Second

// Dataset caches the bounds of a remote dataset. A failed fetch is logged,
// answered with DefaultBounds and retried after RetryAfter. Concurrent
// callers share a single in-flight fetch.
type Dataset struct {
	URL        string
	RetryAfter time.Duration

	client *http.Client
	now    func() time.Time
	group  singleflight.Group

	mu       sync.Mutex
	bounds   BoundingBox
	ok       bool
	failedAt time.Time
}

type boundsResult struct {
	bounds BoundingBox
	ok     bool
}

func NewDataset(url string, client *http.Client) *Dataset {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Dataset{URL: url, RetryAfter: time.Minute, client: client, now: time.Now}
}

// Bounds returns the cached bounds, fetching them on first use. The bool
// is false when DefaultBounds is being served.
func (d *Dataset) Bounds(ctx context.Context) (BoundingBox, bool) {
	if r, hit := d.cached(); hit {
		return r.bounds, r.ok
	}
	v, _, _ := d.group.Do(d.URL, func() (any, error) {
		if r, hit := d.cached(); hit {
			return r, nil
		}
		return d.fetch(ctx), nil
	})
	r := v.(boundsResult)
	return r.bounds, r.ok
}

// cached reports the stored answer, if any is still valid.
func (d *Dataset) cached() (boundsResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ok {
		return boundsResult{bounds: d.bounds, ok: true}, true
	}
	if !d.failedAt.IsZero() && d.now().Sub(d.failedAt) < d.RetryAfter {
		return boundsResult{bounds: DefaultBounds}, true
	}
	return boundsResult{}, false
}

func (d *Dataset) fetch(ctx context.Context) boundsResult {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()

	b, err := FetchBounds(fetchCtx, d.client, d.URL)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		slog.WarnContext(ctx, "point cloud metadata unavailable, using default bounds",
			"url", d.URL,
			"error", err,
		)
		metrics.IncViewerBounds("fallback")
		d.failedAt = d.now()
		return boundsResult{bounds: DefaultBounds}
	}
	metrics.IncViewerBounds("ok")
	d.bounds = b
	d.ok = true
	return boundsResult{bounds: b, ok: true}
}
