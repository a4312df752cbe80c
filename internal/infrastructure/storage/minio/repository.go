package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

const (
	snapshotPrefix      = "snapshots/"
	snapshotContentType = "application/json"
	maxSnapshotBytes    = 8 << 20
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "snapshot not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid snapshot request")
)

// SnapshotMetrics counts snapshot writes.
type SnapshotMetrics interface {
	RecordSnapshot(err error)
}

type nopSnapshotMetrics struct{}

func (nopSnapshotMetrics) RecordSnapshot(error) {}

// SnapshotStore writes quote snapshots as JSON objects under
// snapshots/<service id>/<quote id>.json.
type SnapshotStore struct {
	client  *Client
	metrics SnapshotMetrics
	logger  logging.Logger
}

var _ apppricing.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(client *Client, metrics SnapshotMetrics, log logging.Logger) *SnapshotStore {
	if metrics == nil {
		metrics = nopSnapshotMetrics{}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SnapshotStore{client: client, metrics: metrics, logger: log}
}

// SnapshotKey returns the object key of a quote's snapshot.  Path separators
// in the ids are rejected so one service cannot address another's objects.
func SnapshotKey(serviceID, quoteID string) (string, error) {
	if serviceID == "" || quoteID == "" {
		return "", ErrInvalidRequest.WithDetail("service id and quote id are required")
	}
	if strings.ContainsAny(serviceID, `/\`) || strings.ContainsAny(quoteID, `/\`) || serviceID == ".." || quoteID == ".." {
		return "", ErrInvalidRequest.WithDetail("ids must not contain path separators")
	}
	return path.Join(snapshotPrefix, serviceID, quoteID+".json"), nil
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *apppricing.QuoteSnapshot) (key string, err error) {
	defer func() { s.metrics.RecordSnapshot(err) }()

	if snap == nil || snap.Quote == nil {
		return "", ErrInvalidRequest.WithDetail("snapshot has no quote")
	}
	if err := s.client.checkOpen(); err != nil {
		return "", err
	}
	key, err = SnapshotKey(snap.Quote.ServiceID, snap.Quote.ID)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode snapshot")
	}

	opts := minio.PutObjectOptions{
		ContentType: snapshotContentType,
		UserMetadata: map[string]string{
			"service-id": snap.Quote.ServiceID,
			"quote-kind": string(snap.Quote.Kind),
		},
		UserTags: map[string]string{
			"service": snap.Quote.ServiceID,
		},
	}
	if _, err := s.client.api.PutObject(ctx, s.client.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSnapshotFailed, "snapshot upload failed").WithDetail(key)
	}

	s.logger.Debug("quote snapshot stored",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return key, nil
}

func (s *SnapshotStore) LoadSnapshot(ctx context.Context, serviceID, quoteID string) (*apppricing.QuoteSnapshot, error) {
	if err := s.client.checkOpen(); err != nil {
		return nil, err
	}
	key, err := SnapshotKey(serviceID, quoteID)
	if err != nil {
		return nil, err
	}

	if _, err := s.client.api.StatObject(ctx, s.client.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "snapshot stat failed")
	}

	obj, err := s.client.api.GetObject(ctx, s.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "snapshot download failed")
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxSnapshotBytes))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "snapshot download failed")
	}

	var snap apppricing.QuoteSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "corrupt snapshot").WithDetail(key)
	}
	return &snap, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

//Personal.AI order the ending
