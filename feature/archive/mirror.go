package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"ixp-tracker/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Mirror keeps located dumps in object storage under {prefix}/{yyyy}/{mm}/{dd}.json.
type Mirror struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewMirror creates a mirror on bucket.
func NewMirror(client storage.Client, bucket, prefix string, logger *zap.Logger) *Mirror {
	return &Mirror{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), logger: logger}
}

func (m *Mirror) monthPrefix(month time.Time) string {
	return path.Join(m.prefix, fmt.Sprintf("%04d", month.Year()), fmt.Sprintf("%02d", int(month.Month()))) + "/"
}

// Key returns the object key of day.
func (m *Mirror) Key(day time.Time) string {
	return m.monthPrefix(day) + fmt.Sprintf("%02d.json", day.Day())
}

// Find returns the earliest mirrored dump of month, or nil when there is none.
func (m *Mirror) Find(ctx context.Context, month time.Time) (*Snapshot, error) {
	prefix := m.monthPrefix(month)
	var keys []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	day, err := strconv.Atoi(strings.TrimSuffix(path.Base(keys[0]), ".json"))
	if err != nil {
		return nil, fmt.Errorf("unexpected mirror key %s", keys[0])
	}
	obj, err := m.client.GetObject(ctx, m.bucket, keys[0], minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", keys[0], err)
	}
	defer obj.Close()
	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", keys[0], err)
	}
	return &Snapshot{Day: month.AddDate(0, 0, day-1), Raw: raw}, nil
}

// Store uploads snap.
func (m *Mirror) Store(ctx context.Context, snap *Snapshot) error {
	key := m.Key(snap.Day)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(snap.Raw), int64(len(snap.Raw)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	m.logger.Debug("Mirrored snapshot", zap.String("key", key))
	return nil
}
