package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/skillswap/backend/pkg/config"
	"github.com/skillswap/backend/pkg/retry"
)

// DefaultUsersCollection is used when no collection name is configured
const DefaultUsersCollection = "users"

// Client represents a Typesense client bound to the users collection
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := newTypesenseClient(cfg)

	err := retry.DoWithLog(
		context.Background(),
		retry.QuickConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Connected to Typesense")
	return &Client{client: client, collection: collectionName(cfg)}, nil
}

// NewClientWithoutHealthCheck builds a client without contacting the server
func NewClientWithoutHealthCheck(cfg *config.TypesenseConfig) *Client {
	return &Client{client: newTypesenseClient(cfg), collection: collectionName(cfg)}
}

func newTypesenseClient(cfg *config.TypesenseConfig) *typesense.Client {
	return typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)
}

func collectionName(cfg *config.TypesenseConfig) string {
	if cfg.Collection == "" {
		return DefaultUsersCollection
	}
	return cfg.Collection
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the users collection name
func (c *Client) Collection() string {
	return c.collection
}

// UsersSchema describes the users collection. Only discoverable users are stored.
func (c *Client) UsersSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: c.collection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "skills_offered", Type: "string[]", Facet: pointer.True()},
			{Name: "skills_wanted", Type: "string[]", Optional: pointer.True()},
			{Name: "location", Type: "string", Optional: pointer.True(), Facet: pointer.True()},
			{Name: "availability", Type: "string[]", Optional: pointer.True(), Facet: pointer.True()},
			{Name: "rating", Type: "float", Facet: pointer.True()},
			{Name: "total_swaps", Type: "int32"},
			{Name: "join_date", Type: "int64"},
		},
		DefaultSortingField: pointer.String("join_date"),
	}
}

// InitSchema ensures the users collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := c.client.Collection(c.collection).Retrieve(ctx); err == nil {
		log.Debug().Str("collection", c.collection).Msg("Typesense collection already exists")
		return nil
	}

	if _, err := c.client.Collections().Create(ctx, c.UsersSchema()); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", c.collection, err)
	}

	log.Info().Str("collection", c.collection).Msg("Created Typesense collection")
	return nil
}

// DropCollection removes the users collection; a missing collection is not an error
func (c *Client) DropCollection(ctx context.Context) error {
	if _, err := c.client.Collection(c.collection).Retrieve(ctx); err != nil {
		return nil
	}
	if _, err := c.client.Collection(c.collection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", c.collection, err)
	}
	return nil
}
