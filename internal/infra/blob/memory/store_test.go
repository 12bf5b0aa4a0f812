package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"herdcore/internal/blob/core"
)

func TestPutGetHead(t *testing.T) {
	store := New()
	ctx := context.Background()
	payload := []byte("hello")

	if _, err := store.Put(ctx, "a/b", bytes.NewReader(payload), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"k": "v"},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a/b", strings.NewReader("other"), core.PutOptions{}); err == nil {
		t.Fatalf("expected overwrite rejection")
	}

	info, reader, err := store.Get(ctx, "a/b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) || info.ContentType != "text/plain" || info.Metadata["k"] != "v" {
		t.Fatalf("roundtrip mismatch: %s %+v", data, info)
	}

	head, err := store.Head(ctx, "a/b")
	if err != nil || head.Size != int64(len(payload)) {
		t.Fatalf("head = %+v, %v", head, err)
	}
	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected miss")
	}
}

func TestListAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"x/1", "x/2", "y/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader("d"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "x/")
	if err != nil || len(infos) != 2 {
		t.Fatalf("list = %d, %v; want 2", len(infos), err)
	}
	existed, err := store.Delete(ctx, "x/1")
	if err != nil || !existed {
		t.Fatalf("delete = %v, %v", existed, err)
	}
	existed, _ = store.Delete(ctx, "x/1")
	if existed {
		t.Fatalf("second delete should report missing")
	}
}

func TestPresignUnsupported(t *testing.T) {
	if _, err := New().PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}
