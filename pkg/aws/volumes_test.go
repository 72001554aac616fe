package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	qt "github.com/frankban/quicktest"
)

type fakeEC2 struct {
	describeVolumes       func(context.Context, *ec2.DescribeVolumesInput) (*ec2.DescribeVolumesOutput, error)
	modifyVolume          func(context.Context, *ec2.ModifyVolumeInput) (*ec2.ModifyVolumeOutput, error)
	describeModifications func(context.Context, *ec2.DescribeVolumesModificationsInput) (*ec2.DescribeVolumesModificationsOutput, error)
	createTags            func(context.Context, *ec2.CreateTagsInput) (*ec2.CreateTagsOutput, error)
}

func (f *fakeEC2) DescribeVolumes(ctx context.Context, in *ec2.DescribeVolumesInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	return f.describeVolumes(ctx, in)
}

func (f *fakeEC2) ModifyVolume(ctx context.Context, in *ec2.ModifyVolumeInput, _ ...func(*ec2.Options)) (*ec2.ModifyVolumeOutput, error) {
	return f.modifyVolume(ctx, in)
}

func (f *fakeEC2) DescribeVolumesModifications(ctx context.Context, in *ec2.DescribeVolumesModificationsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesModificationsOutput, error) {
	return f.describeModifications(ctx, in)
}

func (f *fakeEC2) CreateTags(ctx context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	return f.createTags(ctx, in)
}

func TestListVolumesFollowsPages(t *testing.T) {
	c := qt.New(t)
	calls := 0
	api := &fakeEC2{
		describeVolumes: func(_ context.Context, in *ec2.DescribeVolumesInput) (*ec2.DescribeVolumesOutput, error) {
			c.Assert(in.Filters, qt.HasLen, 1)
			c.Assert(aws.ToString(in.Filters[0].Name), qt.Equals, "volume-type")
			c.Assert(in.Filters[0].Values, qt.DeepEquals, []string{"gp2", "io1"})
			if calls > 0 {
				c.Assert(aws.ToString(in.NextToken), qt.Equals, "page-2")
			}
			calls++

			if calls == 1 {
				return &ec2.DescribeVolumesOutput{
					Volumes: []types.Volume{{
						VolumeId:         aws.String("vol-1"),
						Size:             aws.Int32(100),
						VolumeType:       types.VolumeTypeGp2,
						AvailabilityZone: aws.String("us-east-1a"),
						Attachments:      []types.VolumeAttachment{{InstanceId: aws.String("i-1")}},
						Tags:             []types.Tag{{Key: aws.String("AutoConvert"), Value: aws.String("true")}},
					}},
					NextToken: aws.String("page-2"),
				}, nil
			}
			return &ec2.DescribeVolumesOutput{
				Volumes: []types.Volume{{
					VolumeId:         aws.String("vol-2"),
					Size:             aws.Int32(8),
					VolumeType:       types.VolumeTypeIo1,
					AvailabilityZone: aws.String("us-east-1b"),
				}},
			}, nil
		},
	}

	volumes, err := NewEBSClientWithAPI(api, "us-east-1").ListVolumes(context.Background(), []string{"gp2", "io1"})
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 2)
	c.Assert(volumes, qt.HasLen, 2)
	c.Assert(volumes[0].VolumeID, qt.Equals, "vol-1")
	c.Assert(volumes[0].InstanceID, qt.Equals, "i-1")
	c.Assert(volumes[0].Size, qt.Equals, int32(100))
	c.Assert(volumes[0].Tags, qt.DeepEquals, map[string]string{"AutoConvert": "true"})
	c.Assert(volumes[1].InstanceID, qt.Equals, "")
	c.Assert(volumes[1].VolumeType, qt.Equals, "io1")
}

func TestListVolumesReturnsPageError(t *testing.T) {
	c := qt.New(t)
	api := &fakeEC2{
		describeVolumes: func(context.Context, *ec2.DescribeVolumesInput) (*ec2.DescribeVolumesOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	volumes, err := NewEBSClientWithAPI(api, "us-east-1").ListVolumes(context.Background(), []string{"gp2"})
	c.Assert(err, qt.ErrorMatches, "error querying EBS volumes page 1: throttled")
	c.Assert(volumes, qt.IsNil)
}

func TestModifyVolumeType(t *testing.T) {
	c := qt.New(t)
	start := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeEC2{
		modifyVolume: func(_ context.Context, in *ec2.ModifyVolumeInput) (*ec2.ModifyVolumeOutput, error) {
			c.Assert(aws.ToString(in.VolumeId), qt.Equals, "vol-1")
			c.Assert(in.VolumeType, qt.Equals, types.VolumeTypeGp3)
			return &ec2.ModifyVolumeOutput{VolumeModification: &types.VolumeModification{
				VolumeId:           aws.String("vol-1"),
				ModificationState:  types.VolumeModificationStateModifying,
				OriginalVolumeType: types.VolumeTypeGp2,
				TargetVolumeType:   types.VolumeTypeGp3,
				StartTime:          aws.Time(start),
			}}, nil
		},
	}

	ack, err := NewEBSClientWithAPI(api, "us-east-1").ModifyVolumeType(context.Background(), "vol-1", "gp3")
	c.Assert(err, qt.IsNil)
	c.Assert(ack.OriginalVolumeType, qt.Equals, "gp2")
	c.Assert(ack.TargetVolumeType, qt.Equals, "gp3")
	c.Assert(ack.ModificationState, qt.Equals, "modifying")
	c.Assert(*ack.StartTime, qt.Equals, start)
}

func TestGetModificationState(t *testing.T) {
	c := qt.New(t)
	api := &fakeEC2{
		describeModifications: func(_ context.Context, in *ec2.DescribeVolumesModificationsInput) (*ec2.DescribeVolumesModificationsOutput, error) {
			switch in.VolumeIds[0] {
			case "vol-never":
				return nil, &smithy.GenericAPIError{Code: "InvalidVolumeModification.NotFound", Message: "not modified"}
			case "vol-broken":
				return nil, &smithy.GenericAPIError{Code: "RequestLimitExceeded", Message: "slow down"}
			}
			return &ec2.DescribeVolumesModificationsOutput{VolumesModifications: []types.VolumeModification{{
				VolumeId:          aws.String(in.VolumeIds[0]),
				ModificationState: types.VolumeModificationStateOptimizing,
				StatusMessage:     aws.String("optimizing"),
				Progress:          aws.Int64(40),
			}}}, nil
		},
	}
	client := NewEBSClientWithAPI(api, "us-east-1")

	state, err := client.GetModificationState(context.Background(), "vol-1")
	c.Assert(err, qt.IsNil)
	c.Assert(state.State, qt.Equals, "optimizing")
	c.Assert(*state.Progress, qt.Equals, int64(40))

	state, err = client.GetModificationState(context.Background(), "vol-never")
	c.Assert(err, qt.IsNil)
	c.Assert(state.State, qt.Equals, "")
	c.Assert(state.VolumeID, qt.Equals, "vol-never")

	_, err = client.GetModificationState(context.Background(), "vol-broken")
	c.Assert(err, qt.ErrorMatches, "error describing modifications for vol-broken: .*slow down")
}

func TestTagVolumeSortsTags(t *testing.T) {
	c := qt.New(t)
	var got []types.Tag
	api := &fakeEC2{
		createTags: func(_ context.Context, in *ec2.CreateTagsInput) (*ec2.CreateTagsOutput, error) {
			c.Assert(in.Resources, qt.DeepEquals, []string{"vol-1"})
			got = in.Tags
			return &ec2.CreateTagsOutput{}, nil
		},
	}

	err := NewEBSClientWithAPI(api, "us-east-1").TagVolume(context.Background(), "vol-1", map[string]string{
		"ConvertedBy":   "IntelligentEBS",
		"AutoConverted": "true",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 2)
	c.Assert(aws.ToString(got[0].Key), qt.Equals, "AutoConverted")
	c.Assert(aws.ToString(got[1].Key), qt.Equals, "ConvertedBy")
}
