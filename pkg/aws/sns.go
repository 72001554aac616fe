package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the subset of the SNS client used for notifications
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes run summaries to an SNS topic
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
}

// NewSNSPublisher creates an SNSPublisher from a loaded AWS config
func NewSNSPublisher(cfg aws.Config, topicARN string) *SNSPublisher {
	return NewSNSPublisherWithAPI(sns.NewFromConfig(cfg), topicARN)
}

// NewSNSPublisherWithAPI creates an SNSPublisher around an existing client
func NewSNSPublisherWithAPI(api SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: api, topicARN: topicARN}
}

// Publish sends message to the topic and returns the SNS message id
func (p *SNSPublisher) Publish(ctx context.Context, subject, message string) (string, error) {
	output, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return "", fmt.Errorf("error publishing to %s: %w", p.topicARN, err)
	}
	return aws.ToString(output.MessageId), nil
}
