// Package semantic owns all Qdrant operations. The engine uses it as a
// persistent read-through cache of content embeddings: points are keyed by a
// content hash, never by candidate identity, so a posting whose text changes
// is re-embedded while unchanged postings skip the embedding round-trip.
package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// VectorStore is the sole owner of the Qdrant connection.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the cache collection if it doesn't exist. dims
// must equal the embedding model's output size.
func (v *VectorStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// pointID derives the deterministic point UUID for a content hash.
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Lookup fetches cached vectors for the given content hashes. Missing keys
// are simply absent from the returned map.
func (v *VectorStore) Lookup(ctx context.Context, keys []string) (map[string][]float32, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ids := make([]*pb.PointId, len(keys))
	byID := make(map[string]string, len(keys))
	for i, k := range keys {
		id := pointID(k)
		ids[i] = &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
		byID[id] = k
	}

	resp, err := v.points.Get(ctx, &pb.GetPoints{
		CollectionName: v.collection,
		Ids:            ids,
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: get %d points: %w", len(keys), err)
	}

	out := make(map[string][]float32, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		key, ok := byID[p.GetId().GetUuid()]
		if !ok {
			continue
		}
		if data := p.GetVectors().GetVector().GetData(); len(data) > 0 {
			out[key] = data
		}
	}
	return out, nil
}

// Store upserts vectors keyed by content hash. The hash is also kept in the
// payload for inspection and pruning.
func (v *VectorStore) Store(ctx context.Context, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(vectors))
	for key, vec := range vectors {
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(key)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vec},
				},
			},
			Payload: map[string]*pb.Value{
				"content_hash": {Kind: &pb.Value_StringValue{StringValue: key}},
			},
		})
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}
