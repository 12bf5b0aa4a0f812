package archive

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"herdcore/internal/blob/core"
	"herdcore/pkg/domain"
)

// captureStore records Put calls; other Store methods are unused here.
type captureStore struct {
	keys  []string
	opts  []core.PutOptions
	blobs [][]byte
}

func (s *captureStore) Put(_ context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	s.keys = append(s.keys, key)
	s.opts = append(s.opts, opts)
	s.blobs = append(s.blobs, data)
	return core.Info{Key: key, Size: int64(len(data))}, nil
}

func (s *captureStore) Get(context.Context, string) (core.Info, io.ReadCloser, error) {
	return core.Info{}, nil, core.ErrUnsupported
}
func (s *captureStore) Head(context.Context, string) (core.Info, error) {
	return core.Info{}, core.ErrUnsupported
}
func (s *captureStore) Delete(context.Context, string) (bool, error) { return false, nil }
func (s *captureStore) List(context.Context, string) ([]core.Info, error) {
	return nil, nil
}
func (s *captureStore) PresignURL(context.Context, string, core.SignedURLOptions) (string, error) {
	return "", core.ErrUnsupported
}
func (s *captureStore) Driver() core.Driver { return core.DriverMemory }

func TestArchiveEstrusDetection(t *testing.T) {
	store := &captureStore{}
	archiver := New(store, "")

	detection := domain.EstrusDetection{
		Base:       domain.Base{ID: "det-1"},
		AnimalID:   "cow-1",
		Species:    "cattle",
		DetectedAt: time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC),
		Status:     domain.EstrusMissed,
	}
	if err := archiver.ArchiveEstrusDetection(context.Background(), detection); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(store.keys) != 1 {
		t.Fatalf("puts = %d, want 1", len(store.keys))
	}
	if want := "archive/estrus_detection/det-1.json"; store.keys[0] != want {
		t.Fatalf("key = %s, want %s", store.keys[0], want)
	}
	if store.opts[0].ContentType != "application/json" {
		t.Fatalf("content type = %s", store.opts[0].ContentType)
	}
	if store.opts[0].Metadata["id"] != "det-1" {
		t.Fatalf("metadata = %v", store.opts[0].Metadata)
	}
	var decoded domain.EstrusDetection
	if err := json.Unmarshal(store.blobs[0], &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "det-1" || decoded.Status != domain.EstrusMissed {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestArchivePregnancyCustomPrefix(t *testing.T) {
	store := &captureStore{}
	archiver := New(store, "retention/v1")

	pregnancy := domain.Pregnancy{Base: domain.Base{ID: "preg-9"}, AnimalID: "cow-2", Species: "cattle"}
	if err := archiver.ArchivePregnancy(context.Background(), pregnancy); err != nil {
		t.Fatalf("archive: %v", err)
	}
	want := "retention/v1/pregnancy/preg-9.json"
	if store.keys[0] != want {
		t.Fatalf("key = %s, want %s", store.keys[0], want)
	}
	if got := archiver.Key(domain.EntityPregnancy, "preg-9"); got != want {
		t.Fatalf("Key() = %s, want %s", got, want)
	}
}
