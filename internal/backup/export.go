// Package backup uploads JSON snapshots of an account to S3-compatible
// object storage through presigned PUT URLs.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"github.com/dmitrijs2005/patrimonio/internal/netx"
	"github.com/google/uuid"
)

const (
	contentType    = "application/json"
	presignExpires = 15 * time.Minute
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadPresigned = netx.UploadPresigned
)

// Config points the exporter at a bucket. Endpoint may be empty for AWS.
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type Exporter struct {
	cfg    Config
	client *http.Client
}

// NewExporter builds an exporter. A nil client means http.DefaultClient.
func NewExporter(cfg Config, client *http.Client) *Exporter {
	return &Exporter{cfg: cfg, client: client}
}

// Snapshot is the exported document. Credentials are never included.
type Snapshot struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Stats      models.UserStats `json:"stats"`
	Liquid     float64          `json:"liquid"`
	Invested   float64          `json:"invested"`
	Total      float64          `json:"total"`
	ExportedAt time.Time        `json:"exportedAt"`
}

func NewSnapshot(a *models.Account, now time.Time) Snapshot {
	return Snapshot{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Stats:      a.Stats,
		Liquid:     a.Stats.Liquid(),
		Invested:   a.Stats.Invested(),
		Total:      a.Stats.Total(),
		ExportedAt: now.UTC(),
	}
}

// ObjectKey returns the storage key for a snapshot of accountID taken at now.
func ObjectKey(accountID string, now time.Time) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/%s-%s.json", now.Year(), now.Month(), now.Day(), accountID, uuid.NewString())
}

// Export uploads a snapshot of a and returns its object key.
func (e *Exporter) Export(ctx context.Context, a *models.Account) (string, error) {
	if a.IsGuest() {
		return "", common.ErrGuestAccount
	}
	if e.cfg.Bucket == "" {
		return "", errors.New("export bucket is not configured")
	}

	now := time.Now()
	body, err := json.MarshalIndent(NewSnapshot(a, now), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	pc, err := e.presignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	key := ObjectKey(a.ID, now)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := uploadPresigned(ctx, e.client, req.URL, contentType, body); err != nil {
		return "", err
	}
	return key, nil
}

func (e *Exporter) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(e.cfg.Region)}
	if e.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(e.cfg.AccessKey, e.cfg.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if e.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}
