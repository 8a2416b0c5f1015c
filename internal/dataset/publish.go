package dataset

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orderlens/orderlens/internal/storage"
)

const (
	formatCSV     = "csv"
	formatParquet = "parquet"
)

type Snapshot struct {
	ID          string
	PublishedAt time.Time
	Objects     []storage.ObjectInfo
}

// Publisher uploads processed datasets as immutable CSV and Parquet
// snapshots and refreshes the table's latest.* keys.
type Publisher struct {
	objects storage.ObjectStore
	table   string
	now     func() time.Time
	newID   func() string
}

func NewPublisher(objects storage.ObjectStore, table string) *Publisher {
	return &Publisher{objects: objects, table: table, now: time.Now, newID: uuid.NewString}
}

func (p *Publisher) Publish(ctx context.Context, ds *Dataset) (Snapshot, error) {
	var csvBody bytes.Buffer
	if err := ds.WriteCSV(&csvBody); err != nil {
		return Snapshot{}, err
	}
	encoded, err := ds.EncodeParquet()
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{ID: p.newID(), PublishedAt: p.now().UTC()}
	payloads := []struct {
		format      string
		contentType string
		body        []byte
	}{
		{format: formatCSV, contentType: "text/csv", body: csvBody.Bytes()},
		{format: formatParquet, contentType: "application/vnd.apache.parquet", body: encoded.Data},
	}
	for _, payload := range payloads {
		snapshotKey, err := storage.BuildSnapshotPath(p.table, snapshot.ID, snapshot.PublishedAt, payload.format)
		if err != nil {
			return Snapshot{}, err
		}
		latestKey, err := storage.BuildLatestPath(p.table, payload.format)
		if err != nil {
			return Snapshot{}, err
		}
		for _, key := range []string{snapshotKey, latestKey} {
			info, err := p.objects.Put(ctx, key, bytes.NewReader(payload.body), int64(len(payload.body)), storage.PutOptions{ContentType: payload.contentType})
			if err != nil {
				return Snapshot{}, fmt.Errorf("publish %s snapshot: %w", payload.format, err)
			}
			snapshot.Objects = append(snapshot.Objects, info)
		}
	}
	return snapshot, nil
}

// FetchLatest downloads the newest published CSV snapshot. The result is
// already processed.
func (p *Publisher) FetchLatest(ctx context.Context) (*Dataset, error) {
	key, err := storage.BuildLatestPath(p.table, formatCSV)
	if err != nil {
		return nil, err
	}
	body, err := p.objects.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch latest snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()
	return Load(body, Options{Delimiter: ','})
}
