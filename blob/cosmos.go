package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

// CosmosPartitionKeyPath is the partition key path the container must be created with.
const CosmosPartitionKeyPath = "/key"

// CosmosStore keeps one item per key in an Azure Cosmos DB container. Each
// item is its own logical partition.
type CosmosStore struct {
	container *azcosmos.ContainerClient
}

type cosmosItem struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Data []byte `json:"data"`
}

func NewCosmosStore(client *azcosmos.Client, databaseName, containerName string) (*CosmosStore, error) {
	container, err := client.NewContainer(databaseName, containerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get cosmosdb container: %w", err)
	}
	return &CosmosStore{container: container}, nil
}

func (s *CosmosStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	resp, err := s.container.ReadItem(ctx, azcosmos.NewPartitionKeyString(key), key, nil)
	if err != nil {
		var responseErr *azcore.ResponseError
		if errors.As(err, &responseErr) && responseErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var item cosmosItem
	if err := json.Unmarshal(resp.Value, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", key, err)
	}
	return item.Data, nil
}

func (s *CosmosStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}

	item, err := json.Marshal(cosmosItem{ID: key, Key: key, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", key, err)
	}

	if _, err := s.container.UpsertItem(ctx, azcosmos.NewPartitionKeyString(key), item, nil); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the cosmos client holds no per-store resources.
func (s *CosmosStore) Close() error {
	return nil
}
