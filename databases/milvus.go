package databases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/vietbot-labs/ragcore/config"
)

// ============================================================================
// MILVUS PROVIDER
// ============================================================================

// Collection schema field names. The document collection stores one vector
// per document description, the FAQ collection one per canonical question.
const (
	DocumentVectorField = "description_vector"
	FAQVectorField      = "question_vector"
)

// MilvusProvider talks to Milvus over its HTTP API
type MilvusProvider struct {
	baseURL    string
	config     *config.VectorStoreConfig
	httpClient *http.Client
}

type milvusStatus struct {
	ErrorCode int    `json:"error_code"`
	Reason    string `json:"reason"`
}

type milvusSearchResponse struct {
	Status  *milvusStatus            `json:"status,omitempty"`
	Results []map[string]interface{} `json:"results"`
}

type milvusDescribeResponse struct {
	Status *milvusStatus `json:"status,omitempty"`
	Schema struct {
		Fields []struct {
			Name       string `json:"name"`
			TypeParams []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"type_params"`
		} `json:"fields"`
	} `json:"schema"`
}

// NewMilvusProvider creates a Milvus-backed vector store
func NewMilvusProvider(cfg *config.VectorStoreConfig) (*MilvusProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewDatabaseError("milvus", "init", "invalid vector store config", err)
	}

	return &MilvusProvider{
		baseURL:    fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Search returns the topK nearest vectors in a collection
func (db *MilvusProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error) {
	vectorField, outputFields := db.collectionFields(collection)

	payload := map[string]interface{}{
		"collection_name": collection,
		"output_fields":   outputFields,
		"search_params": map[string]interface{}{
			"metric_type": "COSINE",
			"params":      map[string]interface{}{"nprobe": db.config.NProbe},
		},
		"dsl_type":     1,
		"vector_field": vectorField,
		"vectors":      [][]float32{vector},
		"limit":        topK,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, NewDatabaseError("milvus", "search", "failed to marshal query", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		db.baseURL+"/api/v1/search", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, NewDatabaseError("milvus", "search", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, NewDatabaseError("milvus", "search", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDatabaseError("milvus", "search",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var result milvusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, NewDatabaseError("milvus", "search", "failed to decode response", err)
	}
	if result.Status != nil && result.Status.ErrorCode != 0 {
		return nil, NewDatabaseError("milvus", "search",
			fmt.Sprintf("error %d: %s", result.Status.ErrorCode, result.Status.Reason), nil)
	}

	return convertMilvusHits(result.Results), nil
}

// CollectionDimension reads the dim param of a vector field from the
// collection schema. Returns 0 without error when the field has no dim.
func (db *MilvusProvider) CollectionDimension(ctx context.Context, collection, vectorField string) (int, error) {
	jsonData, err := json.Marshal(map[string]string{"collection_name": collection})
	if err != nil {
		return 0, NewDatabaseError("milvus", "describe", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		db.baseURL+"/api/v1/collection", bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, NewDatabaseError("milvus", "describe", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return 0, NewDatabaseError("milvus", "describe", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, NewDatabaseError("milvus", "describe",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var describe milvusDescribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&describe); err != nil {
		return 0, NewDatabaseError("milvus", "describe", "failed to decode response", err)
	}
	if describe.Status != nil && describe.Status.ErrorCode != 0 {
		return 0, NewDatabaseError("milvus", "describe",
			fmt.Sprintf("error %d: %s", describe.Status.ErrorCode, describe.Status.Reason), nil)
	}

	for _, field := range describe.Schema.Fields {
		if field.Name != vectorField {
			continue
		}
		for _, param := range field.TypeParams {
			if param.Key == "dim" {
				dim, err := strconv.Atoi(param.Value)
				if err != nil {
					return 0, NewDatabaseError("milvus", "describe",
						"invalid dim param: "+param.Value, err)
				}
				return dim, nil
			}
		}
	}

	return 0, nil
}

// IsLive probes the health endpoint within the configured timeout
func (db *MilvusProvider) IsLive(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(db.config.ProbeTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", db.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Close releases provider resources
func (db *MilvusProvider) Close() error {
	return nil
}

// collectionFields maps a collection name to its vector field and the
// stored fields to return with each hit
func (db *MilvusProvider) collectionFields(collection string) (string, []string) {
	if collection == db.config.FAQCollection {
		return FAQVectorField, []string{"faq_id", "question", "answer"}
	}
	return DocumentVectorField, []string{"document_id", "description"}
}

// convertMilvusHits maps raw hit objects to SearchResults, converting
// distance to similarity when the hit carries a distance instead of a
// score. Results are ordered by score descending.
func convertMilvusHits(hits []map[string]interface{}) []SearchResult {
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		id := ""
		if idVal, ok := hit["id"].(string); ok {
			id = idVal
		} else if idVal, ok := hit["id"].(float64); ok {
			id = strconv.FormatFloat(idVal, 'f', 0, 64)
		}

		score := float32(0)
		if scoreVal, ok := hit["score"].(float64); ok {
			score = float32(scoreVal)
		} else if distVal, ok := hit["distance"].(float64); ok {
			score = float32(1.0 - distVal)
		}

		content := ""
		if contentVal, ok := hit["content"].(string); ok {
			content = contentVal
		}

		metadata := make(map[string]interface{})
		for k, v := range hit {
			switch k {
			case "id", "score", "distance", "vector":
			default:
				metadata[k] = v
			}
		}

		results = append(results, SearchResult{
			ID:       id,
			Score:    score,
			Content:  content,
			Metadata: metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
