package staging

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const partSize = 8 * 1024 * 1024 // 8MB

// AWSClient implements Client on the AWS SDK. Uploads go through the
// transfer manager, which switches to concurrent multipart uploads for
// large archives.
type AWSClient struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewAWSClient creates a staging client from an AWS config.
func NewAWSClient(cfg aws.Config) *AWSClient {
	client := s3.NewFromConfig(cfg)
	return &AWSClient{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = partSize
		}),
	}
}

// Head retrieves object metadata, mapping missing keys to ErrNotFound.
func (c *AWSClient) Head(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	resp, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("head object: %w", err)
	}

	return &ObjectInfo{Size: aws.ToInt64(resp.ContentLength)}, nil
}

// Put uploads one object.
func (c *AWSClient) Put(ctx context.Context, req *PutRequest) error {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(req.Bucket),
		Key:      aws.String(req.Key),
		Body:     req.Body,
		Metadata: req.Metadata,
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("upload object: %w", err)
	}

	return nil
}
