package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ExportURLValidity is how long a published export link stays usable.
const ExportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

// PublishedExport describes a CSV export stored in the object store.
type PublishedExport struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// GetRandomExportKey returns a fresh object key grouped by date.
func GetRandomExportKey() string {
	d := timeNow()
	return fmt.Sprintf("exports/%d/%d/%d/%v.csv", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *CustomerService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// PublishExport renders the customers matching f as CSV, uploads the file to
// the export bucket and returns a presigned download link.
func (s *CustomerService) PublishExport(ctx context.Context, f models.CustomerFilter) (*PublishedExport, error) {
	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, &buf, f); err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring object store: %w", err)
	}

	bucket := s.config.S3Bucket
	key := GetRandomExportKey()

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ExportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	s.logger.Info(ctx, "customer export published", "key", key, "bytes", buf.Len())
	return &PublishedExport{Key: key, URL: req.URL, ExpiresAt: timeNow().Add(ExportURLValidity)}, nil
}
