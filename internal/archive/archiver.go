// Package archive retains purged records as JSON blobs so deletions from the
// live store never lose history.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"herdcore/internal/blob/core"
	"herdcore/pkg/domain"
)

const contentType = "application/json"

// Archiver writes purged records to a blob store under a fixed prefix.
type Archiver struct {
	store  core.Store
	prefix string
}

// New constructs an archiver over the blob store. An empty prefix defaults to
// "archive".
func New(store core.Store, prefix string) *Archiver {
	if prefix == "" {
		prefix = "archive"
	}
	return &Archiver{store: store, prefix: prefix}
}

// ArchiveEstrusDetection persists the detection before it is purged.
func (a *Archiver) ArchiveEstrusDetection(ctx context.Context, detection domain.EstrusDetection) error {
	return a.put(ctx, domain.EntityEstrusDetection, detection.ID, detection)
}

// ArchivePregnancy persists the pregnancy before it is deleted.
func (a *Archiver) ArchivePregnancy(ctx context.Context, pregnancy domain.Pregnancy) error {
	return a.put(ctx, domain.EntityPregnancy, pregnancy.ID, pregnancy)
}

func (a *Archiver) put(ctx context.Context, entity domain.EntityType, id string, record any) error {
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", entity, id, err)
	}
	key := path.Join(a.prefix, string(entity), id+".json")
	_, err = a.store.Put(ctx, key, bytes.NewReader(raw), core.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"entity": string(entity), "id": id},
	})
	if err != nil {
		return fmt.Errorf("archive %s %s: %w", entity, id, err)
	}
	return nil
}

// Key returns the blob key an archived record is stored under.
func (a *Archiver) Key(entity domain.EntityType, id string) string {
	return path.Join(a.prefix, string(entity), id+".json")
}
