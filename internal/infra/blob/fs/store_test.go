package fs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"herdcore/internal/blob/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestPutGetRoundtrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	payload := []byte(`{"id":"preg-1"}`)

	info, err := store.Put(ctx, "archive/pregnancies/preg-1.json", bytes.NewReader(payload), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"entity": "pregnancies"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}

	got, reader, err := store.Get(ctx, "archive/pregnancies/preg-1.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("content mismatch: %s", data)
	}
	if got.ContentType != "application/json" || got.Metadata["entity"] != "pregnancies" {
		t.Fatalf("metadata lost: %+v", got)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag changed between put and get")
	}
}

func TestPutNeverOverwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatalf("expected overwrite rejection")
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := store.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("delete = %v, %v; want true, nil", existed, err)
	}
	existed, err = store.Delete(ctx, "k")
	if err != nil || existed {
		t.Fatalf("second delete = %v, %v; want false, nil", existed, err)
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, key := range []string{"archive/detections/a.json", "archive/pregnancies/b.json", "other/c.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "archive/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("list = %d entries, want 2", len(infos))
	}
	if infos[0].Key > infos[1].Key {
		t.Fatalf("list not sorted: %s, %s", infos[0].Key, infos[1].Key)
	}
}

func TestPresignGetOnly(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	url, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "GET"})
	if err != nil || url == "" {
		t.Fatalf("presign GET = %q, %v", url, err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected PUT presign to be unsupported")
	}
}
