package ingestion

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to download documents.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
// A non-empty endpoint overrides the service URL (R2, MinIO).
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// FromS3 downloads bucket/key and extracts it using DefaultExtractor.
func FromS3(ctx context.Context, getter ObjectGetter, bucket, key string) (*Document, error) {
	return DefaultExtractor.FromS3(ctx, getter, bucket, key)
}

// FromS3 downloads bucket/key and extracts it. The key's extension selects the format.
func (x *Extractor) FromS3(ctx context.Context, getter ObjectGetter, bucket, key string) (*Document, error) {
	if _, err := DetectFormat(key); err != nil {
		return nil, err
	}
	source := "s3://" + bucket + "/" + key

	out, err := getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &SourceError{Source: source, Message: "failed to download object", Cause: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &SourceError{Source: source, Message: "failed to read object body", Cause: err}
	}

	doc, err := x.Extract(ctx, key, data)
	if err != nil {
		return nil, err
	}
	doc.Metadata.Source = source
	return doc, nil
}
