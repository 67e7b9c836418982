package databases

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/vietbot-labs/ragcore/config"
)

// ============================================================================
// QDRANT PROVIDER
// ============================================================================

// QdrantProvider talks to Qdrant through the official gRPC client.
// Collections are expected to use cosine distance, so scores come back
// as similarities directly.
type QdrantProvider struct {
	client *qdrant.Client
	config *config.VectorStoreConfig
}

// NewQdrantProvider creates a Qdrant-backed vector store
func NewQdrantProvider(cfg *config.VectorStoreConfig) (*QdrantProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewDatabaseError("qdrant", "init", "invalid vector store config", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, NewDatabaseError("qdrant", "init", "failed to create client", err)
	}

	return &QdrantProvider{
		client: client,
		config: cfg,
	}, nil
}

// Search returns the topK nearest vectors in a collection
func (db *QdrantProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error) {
	searchRequest := &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	pointsClient := db.client.GetPointsClient()
	searchResult, err := pointsClient.Search(ctx, searchRequest)
	if err != nil {
		return nil, NewDatabaseError("qdrant", "search", "failed to search points", err)
	}

	results := make([]SearchResult, 0, len(searchResult.Result))
	for _, point := range searchResult.Result {
		results = append(results, SearchResult{
			ID:       pointID(point.Id),
			Score:    point.Score,
			Content:  payloadContent(point.Payload),
			Metadata: convertPayload(point.Payload),
		})
	}

	return results, nil
}

// CollectionDimension reads the vector size from the collection config.
// Named vector configs are looked up by vectorField.
func (db *QdrantProvider) CollectionDimension(ctx context.Context, collection, vectorField string) (int, error) {
	info, err := db.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return 0, NewDatabaseError("qdrant", "describe", "failed to get collection info", err)
	}

	if info.Config == nil || info.Config.Params == nil || info.Config.Params.VectorsConfig == nil {
		return 0, nil
	}

	if params := info.Config.Params.VectorsConfig.GetParams(); params != nil {
		return int(params.Size), nil
	}
	if paramsMap := info.Config.Params.VectorsConfig.GetParamsMap(); paramsMap != nil {
		if params, ok := paramsMap.Map[vectorField]; ok {
			return int(params.Size), nil
		}
	}

	return 0, nil
}

// IsLive probes the health endpoint within the configured timeout
func (db *QdrantProvider) IsLive(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(db.config.ProbeTimeout)*time.Second)
	defer cancel()

	_, err := db.client.HealthCheck(probeCtx)
	return err == nil
}

// Close closes the underlying gRPC connection
func (db *QdrantProvider) Close() error {
	return db.client.Close()
}

// pointID extracts the string form of a point identifier
func pointID(id *qdrant.PointId) string {
	if id == nil || id.PointIdOptions == nil {
		return ""
	}
	switch idType := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return idType.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", idType.Num)
	}
	return ""
}

// convertPayload maps Qdrant payload values back to plain Go values
func convertPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	metadata := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		switch v := value.Kind.(type) {
		case *qdrant.Value_StringValue:
			metadata[key] = v.StringValue
		case *qdrant.Value_IntegerValue:
			metadata[key] = v.IntegerValue
		case *qdrant.Value_DoubleValue:
			metadata[key] = v.DoubleValue
		case *qdrant.Value_BoolValue:
			metadata[key] = v.BoolValue
		default:
			metadata[key] = value
		}
	}
	return metadata
}

func payloadContent(payload map[string]*qdrant.Value) string {
	if value, ok := payload["content"]; ok {
		if v, ok := value.Kind.(*qdrant.Value_StringValue); ok {
			return v.StringValue
		}
	}
	return ""
}
