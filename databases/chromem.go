package databases

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/vietbot-labs/ragcore/config"
)

// ============================================================================
// CHROMEM PROVIDER
// ============================================================================

// Seeder is implemented by stores that accept direct vector writes
type Seeder interface {
	Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]interface{}) error
}

// ChromemProvider is an embedded in-process vector store. It needs no
// external service, which makes it the store for tests and one-shot CLI
// runs. Collections report the dimension of the first vector they
// received.
type ChromemProvider struct {
	db     *chromem.DB
	config *config.VectorStoreConfig

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
	dims        map[string]int

	embeddingFunc chromem.EmbeddingFunc
}

// NewChromemProvider creates an embedded vector store. With a persist
// path configured, state is loaded from and saved to that directory.
func NewChromemProvider(cfg *config.VectorStoreConfig) (*ChromemProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewDatabaseError("chromem", "init", "invalid vector store config", err)
	}

	var db *chromem.DB
	if cfg.PersistPath != "" {
		persistent, err := chromem.NewPersistentDB(cfg.PersistPath, false)
		if err != nil {
			return nil, NewDatabaseError("chromem", "init", "failed to open persistent store", err)
		}
		db = persistent
	} else {
		db = chromem.NewDB()
	}

	// Vectors arrive pre-computed, the store never embeds on its own
	identityEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("embedding function called but vectors are pre-computed")
	}

	return &ChromemProvider{
		db:            db,
		config:        cfg,
		collections:   make(map[string]*chromem.Collection),
		dims:          make(map[string]int),
		embeddingFunc: identityEmbed,
	}, nil
}

// Search returns the topK nearest vectors in a collection. topK is
// clamped to the collection size.
func (db *ChromemProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error) {
	col, err := db.getCollection(collection)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	if topK > count {
		topK = count
	}

	hits, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, NewDatabaseError("chromem", "search", "query failed", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		metadata := make(map[string]interface{}, len(hit.Metadata))
		for k, v := range hit.Metadata {
			metadata[k] = v
		}
		results = append(results, SearchResult{
			ID:       hit.ID,
			Score:    hit.Similarity,
			Content:  hit.Content,
			Metadata: metadata,
		})
	}

	return results, nil
}

// Upsert adds or replaces a vector. The first upsert into a collection
// fixes the dimension that CollectionDimension reports.
func (db *ChromemProvider) Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]interface{}) error {
	col, err := db.getCollection(collection)
	if err != nil {
		return err
	}

	strMetadata := make(map[string]string, len(metadata))
	for k, v := range metadata {
		strMetadata[k] = fmt.Sprint(v)
	}

	content := ""
	if c, ok := metadata["content"].(string); ok {
		content = c
	}

	doc := chromem.Document{
		ID:        id,
		Content:   content,
		Metadata:  strMetadata,
		Embedding: vector,
	}

	if err := col.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return NewDatabaseError("chromem", "upsert", "failed to add document", err)
	}

	db.mu.Lock()
	if _, ok := db.dims[collection]; !ok {
		db.dims[collection] = len(vector)
	}
	db.mu.Unlock()

	return nil
}

// CollectionDimension returns the dimension recorded at first upsert,
// or 0 for a collection that has never been written
func (db *ChromemProvider) CollectionDimension(ctx context.Context, collection, vectorField string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.dims[collection], nil
}

// IsLive always reports true for the embedded store
func (db *ChromemProvider) IsLive(ctx context.Context) bool {
	return true
}

// Close releases provider resources
func (db *ChromemProvider) Close() error {
	return nil
}

func (db *ChromemProvider) getCollection(name string) (*chromem.Collection, error) {
	db.mu.RLock()
	if col, ok := db.collections[name]; ok {
		db.mu.RUnlock()
		return col, nil
	}
	db.mu.RUnlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	if col, ok := db.collections[name]; ok {
		return col, nil
	}

	col, err := db.db.GetOrCreateCollection(name, nil, db.embeddingFunc)
	if err != nil {
		return nil, NewDatabaseError("chromem", "collection",
			fmt.Sprintf("failed to get or create collection %q", name), err)
	}

	db.collections[name] = col
	return col, nil
}
