package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

// DynamoDBScanAPI is the subset of the DynamoDB client used to read the store table
type DynamoDBScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBStoreRepository reads store locations from a DynamoDB table
type DynamoDBStoreRepository struct {
	client    DynamoDBScanAPI
	tableName string
}

var _ StoreRepository = (*DynamoDBStoreRepository)(nil)

// NewDynamoDBStoreRepository creates a new DynamoDB store repository
func NewDynamoDBStoreRepository(client DynamoDBScanAPI, tableName string) *DynamoDBStoreRepository {
	return &DynamoDBStoreRepository{
		client:    client,
		tableName: tableName,
	}
}

// All scans the whole table, following pagination, and validates the result
func (r *DynamoDBStoreRepository) All(ctx context.Context) ([]models.StoreLocation, error) {
	if r.client == nil {
		return nil, fmt.Errorf("DynamoDB client not initialized")
	}

	var (
		stores           []models.StoreLocation
		lastEvaluatedKey map[string]dynamodbtypes.AttributeValue
	)

	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan stores: %w", err)
		}

		var page []models.StoreLocation
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stores: %w", err)
		}
		stores = append(stores, page...)

		lastEvaluatedKey = result.LastEvaluatedKey
		if len(lastEvaluatedKey) == 0 {
			break
		}
	}

	if err := ValidateStores(stores); err != nil {
		return nil, fmt.Errorf("stores table %s: %w", r.tableName, err)
	}

	if stores == nil {
		stores = []models.StoreLocation{}
	}
	return stores, nil
}
