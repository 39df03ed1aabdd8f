// internal/store/indexer.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const evaluationsIndex = "evaluations"

// Indexer mirrors evaluations into Elasticsearch for the search surface.
// Indexing is best-effort: Postgres is the source of truth and a failed
// index write never fails a settlement.
type Indexer struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "indexer"}),
	}
}

// Index writes one evaluation document, keyed by evaluation ID so re-index
// attempts overwrite instead of duplicating.
func (i *Indexer) Index(ctx context.Context, eval *models.Evaluation) error {
	doc, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}

	res, err := i.client.Index(
		evaluationsIndex,
		bytes.NewReader(doc),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(eval.ID),
	)
	if err != nil {
		return fmt.Errorf("index evaluation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index evaluation: %s", res.Status())
	}

	i.logger.Debug("evaluation indexed", map[string]interface{}{"evaluationId": eval.ID})
	return nil
}

// Search runs a match query over title, author, repo and reasoning.
func (i *Indexer) Search(ctx context.Context, query string, limit int) ([]*models.Evaluation, error) {
	if limit <= 0 {
		limit = 20
	}

	body, _ := json.Marshal(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"pr.title", "pr.author", "pr.repo", "ai.reasoning"},
			},
		},
		"sort": []map[string]interface{}{
			{"timestamp": map[string]string{"order": "desc"}},
		},
	})

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(evaluationsIndex),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search evaluations: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search evaluations: %s", res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	evals := make([]*models.Evaluation, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var eval models.Evaluation
		if err := json.Unmarshal(hit.Source, &eval); err != nil {
			continue
		}
		evals = append(evals, &eval)
	}
	return evals, nil
}
