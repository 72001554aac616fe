package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/younsl/ebsconvert/internal/audit"
	"github.com/younsl/ebsconvert/internal/models"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the audit store
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	dynamodb.QueryAPIClient
}

// DynamoAuditStore writes audit records to a DynamoDB table keyed by VolumeId (hash) and LoggedAt (range)
type DynamoAuditStore struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoAuditStore creates a DynamoAuditStore from a loaded AWS config
func NewDynamoAuditStore(cfg aws.Config, table string) *DynamoAuditStore {
	return NewDynamoAuditStoreWithAPI(dynamodb.NewFromConfig(cfg), table)
}

// NewDynamoAuditStoreWithAPI creates a DynamoAuditStore around an existing client
func NewDynamoAuditStoreWithAPI(api DynamoDBAPI, table string) *DynamoAuditStore {
	return &DynamoAuditStore{client: api, table: table}
}

// Put inserts a new audit record
func (s *DynamoAuditStore) Put(ctx context.Context, record models.AuditRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("error marshalling audit record for %s: %w", record.VolumeID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error writing audit record for %s: %w", record.VolumeID, err)
	}
	return nil
}

// UpdateStatus sets the terminal status of an existing record. The write is
// conditional on the (VolumeId, LoggedAt) key already existing.
func (s *DynamoAuditStore) UpdateStatus(ctx context.Context, update models.StatusUpdate) error {
	expr := "SET ConversionStatus = :s, LastCheckedAt = :t"
	values := map[string]types.AttributeValue{
		":s": &types.AttributeValueMemberS{Value: string(update.Status)},
		":t": &types.AttributeValueMemberS{Value: update.CheckedAt},
	}
	if update.StatusMessage != "" {
		expr += ", StatusMessage = :m"
		values[":m"] = &types.AttributeValueMemberS{Value: update.StatusMessage}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"VolumeId": &types.AttributeValueMemberS{Value: update.VolumeID},
			"LoggedAt": &types.AttributeValueMemberS{Value: update.LoggedAt},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(VolumeId)"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("volume %s at %s: %w", update.VolumeID, update.LoggedAt, audit.ErrRecordNotFound)
		}
		return fmt.Errorf("error updating audit record for %s: %w", update.VolumeID, err)
	}
	return nil
}

// History returns every record stored for a volume, oldest first
func (s *DynamoAuditStore) History(ctx context.Context, volumeID string) ([]models.AuditRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("VolumeId = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: volumeID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var records []models.AuditRecord
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying audit history for %s: %w", volumeID, err)
		}
		var page []models.AuditRecord
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, fmt.Errorf("error unmarshalling audit history for %s: %w", volumeID, err)
		}
		records = append(records, page...)
	}
	return records, nil
}
