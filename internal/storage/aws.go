package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// summaryTTL bounds how long KPI summaries stay in DynamoDB.
const summaryTTL = 365 * 24 * time.Hour

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// S3Publisher stores the CSV and summary in S3 and, when a table is
// configured, appends the summary to a DynamoDB history.
type S3Publisher struct {
	s3Client  s3API
	dynamoDB  dynamoAPI
	bucket    string
	tableName string
}

// SummaryItem represents a KPI summary stored in DynamoDB
type SummaryItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Key       string `dynamodbav:"Key"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// NewS3Publisher loads the AWS configuration for cfg. Static keys take
// precedence over the profile and the default credential chain.
func NewS3Publisher(ctx context.Context, cfg config.ExportConfig) (*S3Publisher, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("export s3_bucket is required for aws storage")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	} else if profile := cfg.GetAWSProfile(); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newS3Publisher(s3.NewFromConfig(awsCfg), dynamodb.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.DynamoDBTable), nil
}

func newS3Publisher(s3Client s3API, db dynamoAPI, bucket, table string) *S3Publisher {
	return &S3Publisher{s3Client: s3Client, dynamoDB: db, bucket: bucket, tableName: table}
}

func (s *S3Publisher) Publish(ctx context.Context, p *Publication) (*Receipt, error) {
	if err := prepare(p); err != nil {
		return nil, err
	}
	csvKey, summaryKey := ExportKey(p), SummaryKey(p)

	if err := s.put(ctx, csvKey, p.CSV, "text/csv; charset=utf-8"); err != nil {
		return nil, err
	}
	summary, err := json.MarshalIndent(p.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}
	if err := s.put(ctx, summaryKey, summary, "application/json"); err != nil {
		return nil, err
	}
	if s.tableName != "" {
		if err := s.saveSummary(ctx, p, csvKey, summary); err != nil {
			return nil, err
		}
	}

	return &Receipt{
		Location:   "s3://" + s.bucket,
		CSVKey:     csvKey,
		SummaryKey: summaryKey,
		Bytes:      len(p.CSV),
		StoredAt:   time.Now().UTC(),
	}, nil
}

// Ping verifies the bucket is reachable via HeadBucket.
func (s *S3Publisher) Ping(ctx context.Context) error {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("HeadBucket failed: %w", err)
	}
	return nil
}

func (s *S3Publisher) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting object to S3: %w", err)
	}
	return nil
}

func (s *S3Publisher) saveSummary(ctx context.Context, p *Publication, csvKey string, summary []byte) error {
	item := SummaryItem{
		PK:        "EXPORT#" + safeName(p.SessionID),
		SK:        p.PublishedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Key:       csvKey,
		Data:      string(summary),
		Timestamp: p.PublishedAt.UTC().Format(time.RFC3339),
		TTL:       p.PublishedAt.Add(summaryTTL).Unix(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}
	_, err = s.dynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting item to DynamoDB: %w", err)
	}
	return nil
}
