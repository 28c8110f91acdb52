package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/internal/ragerr"
	"docqa/pkg/logger"
)

const (
	idMaxLength     = 512
	textMaxLength   = 65535
	sourceMaxLength = 512
	ivfNlist        = 128
	ivfNprobe       = 10
)

// MilvusStore implements the VectorStore interface on top of Milvus.
// Each collection holds vectors of one fixed dimensionality, indexed
// with IVF_FLAT under the COSINE metric.
type MilvusStore struct {
	log    *logger.Logger
	client client.Client
}

// NewMilvusStore connects to Milvus at the given address.
func NewMilvusStore(ctx context.Context, address string, log *logger.Logger) (*MilvusStore, error) {
	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to connect to Milvus")
	}
	log.Info(fmt.Sprintf("Connected to Milvus at %s", address))
	return &MilvusStore{log: log, client: c}, nil
}

// Close releases the underlying Milvus connection.
func (s *MilvusStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// EnsureCollection creates the collection for the given dimensionality
// if it does not exist, verifies the declared dimensionality if it
// does, and loads it for search.
func (s *MilvusStore) EnsureCollection(ctx context.Context, dimensions int) (string, error) {
	if dimensions <= 0 {
		return "", ragerr.Newf(ragerr.CodeConfiguration, "collection dimensions must be positive, got %d", dimensions)
	}

	name := CollectionName(dimensions)

	exists, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeProvider, "failed to check collection existence")
	}

	if exists {
		if err := s.verifyCollectionDims(ctx, name, dimensions); err != nil {
			return "", err
		}
	} else {
		if err := s.createCollection(ctx, name, dimensions); err != nil {
			return "", err
		}
	}

	if err := s.client.LoadCollection(ctx, name, false); err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("failed to load collection %s", name))
	}
	return name, nil
}

func (s *MilvusStore) createCollection(ctx context.Context, name string, dimensions int) error {
	collSchema := entity.NewSchema().
		WithName(name).
		WithDescription("document chunks for retrieval-augmented question answering").
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(idMaxLength).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(FieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimensions))).
		WithField(entity.NewField().
			WithName(FieldText).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(textMaxLength)).
		WithField(entity.NewField().
			WithName(FieldSource).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(sourceMaxLength)).
		WithField(entity.NewField().
			WithName(FieldTimestamp).
			WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().
			WithName(FieldDimensions).
			WithDataType(entity.FieldTypeInt64))

	if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("failed to create collection %s", name))
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, ivfNlist)
	if err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, "failed to build index definition")
	}
	if err := s.client.CreateIndex(ctx, name, FieldEmbedding, idx, false); err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("failed to create index on %s", name))
	}

	s.log.Info(fmt.Sprintf("Created Milvus collection %s with %d dimensions", name, dimensions))
	return nil
}

// verifyCollectionDims rejects a collection whose declared embedding
// dimensionality differs from the requested one. The declared value is
// never changed.
func (s *MilvusStore) verifyCollectionDims(ctx context.Context, name string, dimensions int) error {
	coll, err := s.client.DescribeCollection(ctx, name)
	if err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("failed to describe collection %s", name))
	}

	for _, field := range coll.Schema.Fields {
		if field.Name != FieldEmbedding {
			continue
		}
		declared, err := strconv.Atoi(field.TypeParams[entity.TypeParamDim])
		if err != nil {
			return ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("collection %s has unreadable dimension metadata", name))
		}
		if declared != dimensions {
			return ragerr.Newf(ragerr.CodeConfiguration,
				"collection %s declares %d dimensions, embedder produces %d", name, declared, dimensions)
		}
		return nil
	}
	return ragerr.Newf(ragerr.CodeProvider, "collection %s has no %s field", name, FieldEmbedding)
}

// Upsert writes records into the collection, overwriting by RecordID so
// re-ingestion of a document replaces its prior records.
func (s *MilvusStore) Upsert(ctx context.Context, collection string, records []schema.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	dims, err := collectionDims(collection)
	if err != nil {
		return err
	}

	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	texts := make([]string, len(records))
	sources := make([]string, len(records))
	timestamps := make([]int64, len(records))
	recordDims := make([]int64, len(records))

	for i, rec := range records {
		if len(rec.Vector) != dims {
			return ragerr.Newf(ragerr.CodeDimensionMismatch,
				"record %s has %d dimensions, collection %s expects %d",
				rec.RecordID, len(rec.Vector), collection, dims)
		}
		ids[i] = rec.RecordID
		vectors[i] = rec.Vector
		texts[i], _ = rec.Metadata[schema.MetadataKeyText].(string)
		sources[i], _ = rec.Metadata[schema.MetadataKeySource].(string)
		timestamps[i], _ = rec.Metadata[schema.MetadataKeyTimestamp].(int64)
		recordDims[i] = int64(dims)
	}

	idCol := entity.NewColumnVarChar(FieldID, ids)
	embeddingCol := entity.NewColumnFloatVector(FieldEmbedding, dims, vectors)
	textCol := entity.NewColumnVarChar(FieldText, texts)
	sourceCol := entity.NewColumnVarChar(FieldSource, sources)
	timestampCol := entity.NewColumnInt64(FieldTimestamp, timestamps)
	dimsCol := entity.NewColumnInt64(FieldDimensions, recordDims)

	s.log.Info(fmt.Sprintf("Upserting %d records into Milvus collection %s", len(records), collection))
	_, err = s.client.Upsert(ctx, collection, "" /* default partition */, idCol, embeddingCol, textCol, sourceCol, timestampCol, dimsCol)
	if err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, "failed to upsert records into Milvus")
	}

	if err := s.client.Flush(ctx, collection, false); err != nil {
		return ragerr.Wrap(err, ragerr.CodeProvider, fmt.Sprintf("failed to flush collection %s", collection))
	}
	return nil
}

// Query performs a cosine-similarity search and returns matches sorted
// by descending score, ties broken by RecordID ascending.
func (s *MilvusStore) Query(ctx context.Context, collection string, vector []float32, topK int) ([]schema.Match, error) {
	if topK <= 0 {
		return nil, ragerr.Newf(ragerr.CodeConfiguration, "topK must be positive, got %d", topK)
	}
	if err := checkVectorDims(collection, vector); err != nil {
		return nil, err
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(ivfNprobe)
	outputFields := []string{FieldID, FieldText, FieldSource, FieldTimestamp}

	results, err := s.client.Search(
		ctx, collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to search Milvus")
	}

	var matches []schema.Match
	for _, res := range results {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(FieldID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Search result is missing the id field, skipping")
			continue
		}
		idData := idCol.Data()

		var textData, sourceData []string
		var timestampData []int64
		if textCol, ok := findColumn(FieldText).(*entity.ColumnVarChar); ok {
			textData = textCol.Data()
		}
		if sourceCol, ok := findColumn(FieldSource).(*entity.ColumnVarChar); ok {
			sourceData = sourceCol.Data()
		}
		if timestampCol, ok := findColumn(FieldTimestamp).(*entity.ColumnInt64); ok {
			timestampData = timestampCol.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			rec := schema.IndexRecord{
				RecordID: idData[i],
				Metadata: map[string]interface{}{
					schema.MetadataKeyDimensions: len(vector),
				},
			}
			if textData != nil {
				rec.Metadata[schema.MetadataKeyText] = textData[i]
			}
			if sourceData != nil {
				rec.Metadata[schema.MetadataKeySource] = sourceData[i]
			}
			if timestampData != nil {
				rec.Metadata[schema.MetadataKeyTimestamp] = timestampData[i]
			}
			matches = append(matches, schema.Match{Record: rec, Score: res.Scores[i]})
		}
	}

	sortMatches(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
