package database

import (
	"context"
	"fmt"

	"github.com/olivere/elastic/v7"
)

// employeeMapping keeps image bytes out of the inverted index. Listings sort
// on (seq, uid); uid mirrors the document id with doc values.
const employeeMapping = `{
	"mappings": {
		"properties": {
			"title":       {"type": "keyword"},
			"name":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"designation": {"type": "keyword"},
			"dob":         {"type": "date", "format": "yyyy-MM-dd"},
			"address":     {"type": "text"},
			"image":       {"type": "object", "enabled": false},
			"uid":         {"type": "keyword"},
			"seq":         {"type": "long"},
			"createdAt":   {"type": "date"},
			"updatedAt":   {"type": "date"}
		}
	}
}`

// NewElasticClient creates a client for Elasticsearch 7.x.
func NewElasticClient(url string) (*elastic.Client, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return client, nil
}

// EnsureIndex creates the employees index with its mapping when missing.
func EnsureIndex(ctx context.Context, client *elastic.Client, index string) error {
	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	if exists {
		return nil
	}
	if _, err := client.CreateIndex(index).BodyString(employeeMapping).Do(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	return nil
}
