package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"herdcore/internal/archive"
	blobcore "herdcore/internal/blob/core"
	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

// fakeBlobStore is a minimal create-only blobcore.Store. The real infra
// stores stay behind the blob package, so tests here carry their own.
type fakeBlobStore struct {
	mu   sync.Mutex
	objs map[string][]byte
	info map[string]blobcore.Info
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objs: make(map[string][]byte), info: make(map[string]blobcore.Info)}
}

func (s *fakeBlobStore) Driver() blobcore.Driver { return blobcore.DriverMemory }

func (s *fakeBlobStore) Put(_ context.Context, key string, r io.Reader, opts blobcore.PutOptions) (blobcore.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return blobcore.Info{}, fmt.Errorf("blob %s already exists", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return blobcore.Info{}, err
	}
	info := blobcore.Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  opts.ContentType,
		Metadata:     blobcore.CloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}
	s.objs[key] = data
	s.info[key] = info
	return info, nil
}

func (s *fakeBlobStore) Get(_ context.Context, key string) (blobcore.Info, io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objs[key]
	if !ok {
		return blobcore.Info{}, nil, fmt.Errorf("blob %s not found", key)
	}
	return s.info[key], io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Head(_ context.Context, key string) (blobcore.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.info[key]
	if !ok {
		return blobcore.Info{}, fmt.Errorf("blob %s not found", key)
	}
	return info, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[key]
	delete(s.objs, key)
	delete(s.info, key)
	return ok, nil
}

func (s *fakeBlobStore) List(_ context.Context, prefix string) ([]blobcore.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []blobcore.Info
	for key, info := range s.info {
		if prefix == "" || len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, info)
		}
	}
	return out, nil
}

func (s *fakeBlobStore) PresignURL(context.Context, string, blobcore.SignedURLOptions) (string, error) {
	return "", blobcore.ErrUnsupported
}

func newArchivingService(t *testing.T) (*Service, *manualClock, *fakeBlobStore, *archive.Archiver) {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	clock := newManualClock(testStart)
	blobs := newFakeBlobStore()
	archiver := archive.New(blobs, "")
	svc := NewService(store, Config{Profiles: testProfiles()},
		WithClock(clock),
		WithArchiver(archiver),
	)
	return svc, clock, blobs, archiver
}

func TestPurgeEstrusDetectionArchivesThenDeletes(t *testing.T) {
	svc, _, blobs, archiver := newArchivingService(t)
	detection, _, err := svc.RecordEstrusDetection(context.Background(), EstrusDetectionInput{
		AnimalID: "cow-1", Species: "cattle", DetectedAt: testStart, Confidence: 0.9,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := svc.MarkFalsePositive(context.Background(), detection.ID, nil); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.PurgeEstrusDetection(context.Background(), detection.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := svc.GetEstrusDetection(detection.ID); err == nil {
		t.Fatalf("detection still in live store after purge")
	}
	key := archiver.Key(EntityEstrusDetection, detection.ID)
	info, reader, err := blobs.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("archived blob missing: %v", err)
	}
	defer func() { _ = reader.Close() }()
	if info.ContentType != "application/json" {
		t.Fatalf("content type = %s", info.ContentType)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	var archived EstrusDetection
	if err := json.Unmarshal(raw, &archived); err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	if archived.ID != detection.ID || archived.Status != EstrusFalsePositive {
		t.Fatalf("archived record = %+v", archived)
	}
}

func TestPurgeOpenDetectionRejected(t *testing.T) {
	svc, _, blobs, _ := newArchivingService(t)
	detection, _, err := svc.RecordEstrusDetection(context.Background(), EstrusDetectionInput{
		AnimalID: "cow-1", Species: "cattle", DetectedAt: testStart, Confidence: 0.9,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	_, err = svc.PurgeEstrusDetection(context.Background(), detection.ID)
	var vErr domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Rule != "purge_terminal_only" {
		t.Fatalf("expected purge_terminal_only error, got %v", err)
	}
	if infos, _ := blobs.List(context.Background(), ""); len(infos) != 0 {
		t.Fatalf("nothing should be archived on rejected purge")
	}
}

func TestDeletePregnancyArchives(t *testing.T) {
	svc, clock, blobs, archiver := newArchivingService(t)
	_, pregnancy := breedThenConfirm(t, svc, clock, "cow-1")

	// Active pregnancies cannot be deleted outright.
	_, err := svc.DeletePregnancy(context.Background(), pregnancy.ID)
	var vErr domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Rule != "delete_terminal_only" {
		t.Fatalf("expected delete_terminal_only error, got %v", err)
	}

	if _, _, err := svc.CancelPregnancy(context.Background(), pregnancy.ID, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.DeletePregnancy(context.Background(), pregnancy.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	key := archiver.Key(EntityPregnancy, pregnancy.ID)
	if _, err := blobs.Head(context.Background(), key); err != nil {
		t.Fatalf("archived pregnancy missing: %v", err)
	}
}

func TestPurgeFailsWhenArchiveFails(t *testing.T) {
	svc, _, blobs, archiver := newArchivingService(t)
	detection, _, err := svc.RecordEstrusDetection(context.Background(), EstrusDetectionInput{
		AnimalID: "cow-1", Species: "cattle", DetectedAt: testStart, Confidence: 0.9,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := svc.MarkFalsePositive(context.Background(), detection.ID, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Occupy the archive key: the store never overwrites, so the archive
	// write fails and the detection must survive.
	key := archiver.Key(EntityEstrusDetection, detection.ID)
	if _, err := blobs.Put(context.Background(), key, bytes.NewReader([]byte("{}")), blobcore.PutOptions{}); err != nil {
		t.Fatalf("seed conflicting blob: %v", err)
	}

	if _, err := svc.PurgeEstrusDetection(context.Background(), detection.ID); err == nil {
		t.Fatalf("expected purge to fail when archive write fails")
	}
	if _, err := svc.GetEstrusDetection(detection.ID); err != nil {
		t.Fatalf("detection must survive failed purge: %v", err)
	}
}
