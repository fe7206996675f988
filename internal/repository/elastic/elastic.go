package elastic

import (
	"context"
	"fmt"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
)

// DriverName - метка драйвера в метриках
const DriverName = "elasticsearch"

// titleIndexMapping - centroid хранится как объект с lat/lon double,
// чтобы range фильтры были строгими
const titleIndexMapping = `{
	"settings": {
		"index": {
			"max_result_window": 20000
		}
	},
	"mappings": {
		"properties": {
			"id":           {"type": "keyword"},
			"title_number": {"type": "keyword"},
			"polygon":      {"type": "object", "enabled": false},
			"centroid": {
				"properties": {
					"lat": {"type": "double"},
					"lon": {"type": "double"}
				}
			},
			"updated_at":   {"type": "date"}
		}
	}
}`

type Client struct {
	client *elastic.Client
	index  string
	logger *zap.Logger
}

// New создаёт клиент Elasticsearch
func New(cfg *config.ElasticConfig, logger *zap.Logger) (*Client, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	logger.Info("Elasticsearch client created",
		zap.Strings("urls", cfg.URLs),
		zap.String("index", cfg.Index))

	return &Client{
		client: client,
		index:  cfg.Index,
		logger: logger,
	}, nil
}

// EnsureIndex создаёт индекс с маппингом, если его нет
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := c.client.IndexExists(c.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", c.index, err)
	}
	if exists {
		c.logger.Debug("Index already exists", zap.String("index", c.index))
		return nil
	}

	created, err := c.client.CreateIndex(c.index).BodyString(titleIndexMapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", c.index, err)
	}
	if !created.Acknowledged {
		c.logger.Warn("CreateIndex was not acknowledged", zap.String("index", c.index))
	}

	c.logger.Info("Index created", zap.String("index", c.index))
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	res, err := c.client.ClusterHealth().Index(c.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch health: %w", err)
	}
	if res.Status == "red" {
		return fmt.Errorf("elasticsearch cluster status is red")
	}
	return nil
}

func (c *Client) Close() error {
	c.logger.Info("Stopping Elasticsearch client")
	c.client.Stop()
	return nil
}
