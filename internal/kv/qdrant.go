package kv

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/Kavirubc/gh-riskradar/internal/config"
)

// pointClient is the subset of *qdrant.Client the store uses
type pointClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Close() error
}

const (
	payloadKey   = "key"
	payloadValue = "value"
)

// QdrantStore keeps each key as one point of a dedicated collection. The
// value lives base64-encoded in the payload; the vector is a 1-dim
// placeholder because Qdrant requires one.
type QdrantStore struct {
	client     pointClient
	collection string
	max        int
}

// NewQdrantStore connects to Qdrant and ensures the collection exists
func NewQdrantStore(ctx context.Context, cfg config.QdrantConfig, maxValueSize int) (*QdrantStore, error) {
	host, port := parseHostPort(cfg.URL)

	// Determine if TLS should be used (cloud.qdrant.io requires TLS)
	useTLS := strings.HasPrefix(cfg.URL, "https://") ||
		strings.Contains(host, "qdrant.io") || strings.Contains(host, "qdrant.cloud")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	s := newQdrantStore(client, cfg.Collection, maxValueSize)
	if err := s.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func newQdrantStore(client pointClient, collection string, maxValueSize int) *QdrantStore {
	return &QdrantStore{client: client, collection: collection, max: maxValueSize}
}

// parseHostPort extracts host and port from URL string
func parseHostPort(url string) (string, int) {
	// Remove protocol prefix if present
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimSuffix(url, "/")

	// Check for port
	if idx := strings.LastIndex(url, ":"); idx != -1 {
		host := url[:idx]
		var port int
		_, _ = fmt.Sscanf(url[idx+1:], "%d", &port)
		if port == 0 {
			port = 6334
		}
		return host, port
	}

	return url, 6334
}

// ensureCollection creates the collection if it doesn't exist
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     1,
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// pointID maps a key to a deterministic point UUID
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("riskradar/kv/"+key)).String()
}

func (s *QdrantStore) Get(ctx context.Context, key string) ([]byte, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(pointID(key))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	v, ok := points[0].Payload[payloadValue]
	if !ok {
		return nil, fmt.Errorf("point for %s has no value payload", key)
	}
	data, err := base64.StdEncoding.DecodeString(v.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("failed to decode value for %s: %w", key, err)
	}
	return data, nil
}

func (s *QdrantStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkSize(key, value, s.max); err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(key)),
		Vectors: qdrant.NewVectors(1),
		Payload: map[string]*qdrant.Value{
			payloadKey:   qdrant.NewValueString(key),
			payloadValue: qdrant.NewValueString(base64.StdEncoding.EncodeToString(value)),
		},
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

func (s *QdrantStore) Delete(ctx context.Context, key string) error {
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewIDUUID(pointID(key))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func (s *QdrantStore) MaxValueSize() int {
	return s.max
}

// Close closes the connection
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
