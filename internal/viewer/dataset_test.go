package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func metadataServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

const sampleMetadata = `{
	"version": "2.0",
	"points": 12000000,
	"boundingBox": {"min": [-10.5, -4, 0], "max": [30, 22.25, 12]}
}`

func TestFetchBounds(t *testing.T) {
	srv, _ := metadataServer(t, http.StatusOK, sampleMetadata)
	b, err := FetchBounds(context.Background(), srv.Client(), srv.URL+"/metadata.json")
	if err != nil {
		t.Fatalf("FetchBounds: %v", err)
	}
	want := BoundingBox{Min: Vec3{-10.5, -4, 0}, Max: Vec3{30, 22.25, 12}}
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
}

func TestFetchBounds_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"not found":       {http.StatusNotFound, "missing"},
		"bad json":        {http.StatusOK, "{"},
		"short vector":    {http.StatusOK, `{"boundingBox":{"min":[0,0],"max":[1,1,1]}}`},
		"inverted box":    {http.StatusOK, `{"boundingBox":{"min":[5,5,5],"max":[1,1,1]}}`},
		"no bounding box": {http.StatusOK, `{}`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := metadataServer(t, c.status, c.body)
			if _, err := FetchBounds(context.Background(), srv.Client(), srv.URL); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDataset_CachesSuccess(t *testing.T) {
	srv, hits := metadataServer(t, http.StatusOK, sampleMetadata)
	ds := NewDataset(srv.URL, srv.Client())

	for i := 0; i < 3; i++ {
		b, ok := ds.Bounds(context.Background())
		if !ok || b.Max.X != 30 {
			t.Fatalf("Bounds = %+v, %v", b, ok)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("metadata fetched %d times, want 1", hits.Load())
	}
}

func TestDataset_FallbackAndRetry(t *testing.T) {
	srv, hits := metadataServer(t, http.StatusBadGateway, "")
	ds := NewDataset(srv.URL, srv.Client())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ds.now = func() time.Time { return now }

	b, ok := ds.Bounds(context.Background())
	if ok || b != DefaultBounds {
		t.Fatalf("Bounds = %+v, %v; want DefaultBounds", b, ok)
	}
	ds.Bounds(context.Background())
	if hits.Load() != 1 {
		t.Errorf("retried within RetryAfter: %d fetches", hits.Load())
	}

	now = now.Add(ds.RetryAfter)
	ds.Bounds(context.Background())
	if hits.Load() != 2 {
		t.Errorf("did not retry after RetryAfter: %d fetches", hits.Load())
	}
}

func TestDataset_CancelledRequestDoesNotPoisonCache(t *testing.T) {
	srv, hits := metadataServer(t, http.StatusOK, sampleMetadata)
	ds := NewDataset(srv.URL, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b, ok := ds.Bounds(ctx); !ok || b.Max.X != 30 {
		t.Fatalf("Bounds with cancelled caller = %+v, %v; want fetched bounds", b, ok)
	}
	if b, ok := ds.Bounds(context.Background()); !ok || b.Max.X != 30 {
		t.Fatalf("next Bounds = %+v, %v; want cached bounds", b, ok)
	}
	if hits.Load() != 1 {
		t.Errorf("metadata fetched %d times, want 1", hits.Load())
	}
}

func TestDataset_ConcurrentCallersShareFetch(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(sampleMetadata))
	}))
	t.Cleanup(srv.Close)
	ds := NewDataset(srv.URL, srv.Client())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ds.Bounds(context.Background()); !ok {
				t.Error("Bounds returned fallback")
			}
		}()
	}
	for hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("metadata fetched %d times, want 1", hits.Load())
	}
}
