package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/utils"
)

// errCodeModificationNotFound is returned by DescribeVolumesModifications for
// volumes that have never been modified
const errCodeModificationNotFound = "InvalidVolumeModification.NotFound"

// EC2API is the subset of the EC2 client used for volume conversion
type EC2API interface {
	ec2.DescribeVolumesAPIClient
	ModifyVolume(ctx context.Context, params *ec2.ModifyVolumeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVolumeOutput, error)
	DescribeVolumesModifications(ctx context.Context, params *ec2.DescribeVolumesModificationsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesModificationsOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// EBSClient struct for EBS client
type EBSClient struct {
	client EC2API
	region string
}

// NewEBSClient creates a new EBSClient from a loaded AWS config
func NewEBSClient(cfg aws.Config) *EBSClient {
	return NewEBSClientWithAPI(ec2.NewFromConfig(cfg), cfg.Region)
}

// NewEBSClientWithAPI creates an EBSClient around an existing EC2 API implementation
func NewEBSClientWithAPI(api EC2API, region string) *EBSClient {
	return &EBSClient{
		client: api,
		region: region,
	}
}

// Region returns the region the client talks to
func (c *EBSClient) Region() string {
	return c.region
}

// ListVolumes returns every volume whose type is one of volumeTypes, across all pages
func (c *EBSClient) ListVolumes(ctx context.Context, volumeTypes []string) ([]models.VolumeCandidate, error) {
	input := &ec2.DescribeVolumesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("volume-type"),
				Values: volumeTypes,
			},
		},
	}

	volumes := []models.VolumeCandidate{}
	paginator := ec2.NewDescribeVolumesPaginator(c.client, input)

	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EBS volumes page %d: %w", pageCount, err)
		}

		for _, volume := range output.Volumes {
			var instanceID string
			if len(volume.Attachments) > 0 {
				instanceID = aws.ToString(volume.Attachments[0].InstanceId)
			}

			volumes = append(volumes, models.VolumeCandidate{
				VolumeID:         aws.ToString(volume.VolumeId),
				Size:             aws.ToInt32(volume.Size),
				VolumeType:       string(volume.VolumeType),
				AvailabilityZone: aws.ToString(volume.AvailabilityZone),
				InstanceID:       instanceID,
				Tags:             utils.GetTagsMap(volume.Tags),
			})
		}
	}

	return volumes, nil
}

// ModifyVolumeType requests an asynchronous type change for a volume
func (c *EBSClient) ModifyVolumeType(ctx context.Context, volumeID, targetType string) (*models.ModifyAck, error) {
	output, err := c.client.ModifyVolume(ctx, &ec2.ModifyVolumeInput{
		VolumeId:   aws.String(volumeID),
		VolumeType: types.VolumeType(targetType),
	})
	if err != nil {
		return nil, fmt.Errorf("error modifying volume %s to %s: %w", volumeID, targetType, err)
	}

	ack := &models.ModifyAck{TargetVolumeType: targetType}
	if mod := output.VolumeModification; mod != nil {
		ack.OriginalVolumeType = string(mod.OriginalVolumeType)
		if mod.TargetVolumeType != "" {
			ack.TargetVolumeType = string(mod.TargetVolumeType)
		}
		ack.ModificationState = string(mod.ModificationState)
		ack.StartTime = utils.CopyTime(mod.StartTime)
	}
	return ack, nil
}

// GetModificationState returns the latest modification reported for a volume.
// A volume with no modification record yields a state with an empty State field.
func (c *EBSClient) GetModificationState(ctx context.Context, volumeID string) (models.ModificationState, error) {
	state := models.ModificationState{VolumeID: volumeID}

	output, err := c.client.DescribeVolumesModifications(ctx, &ec2.DescribeVolumesModificationsInput{
		VolumeIds: []string{volumeID},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeModificationNotFound {
			return state, nil
		}
		return state, fmt.Errorf("error describing modifications for %s: %w", volumeID, err)
	}

	for _, mod := range output.VolumesModifications {
		if mod.VolumeId != nil && !strings.EqualFold(*mod.VolumeId, volumeID) {
			continue
		}
		state.State = string(mod.ModificationState)
		state.StatusMessage = aws.ToString(mod.StatusMessage)
		state.Progress = mod.Progress
		state.StartTime = utils.CopyTime(mod.StartTime)
		break
	}
	return state, nil
}

// TagVolume applies tags to a volume
func (c *EBSClient) TagVolume(ctx context.Context, volumeID string, tags map[string]string) error {
	_, err := c.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{volumeID},
		Tags:      utils.ConvertToEC2Tags(tags),
	})
	if err != nil {
		return fmt.Errorf("error tagging volume %s: %w", volumeID, err)
	}
	return nil
}
