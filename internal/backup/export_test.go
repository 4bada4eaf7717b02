package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAWS(t *testing.T, presignURL string) *s3.PutObjectInput {
	t.Helper()

	origLoad, origNewS3, origNewPre, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "sa-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://minio:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}

	captured := &s3.PutObjectInput{}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*captured = *in
		return &v4.PresignedHTTPRequest{URL: presignURL, Method: http.MethodPut}, nil
	}
	return captured
}

func testConfig() Config {
	return Config{
		Bucket:    "patrimonio",
		Endpoint:  "http://minio:9000",
		Region:    "sa-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}
}

func testAccount() *models.Account {
	a := models.NewAccount("Ana", "a@x.com", []byte("salt"), []byte("hash"))
	a.Stats.AccessibleMoney.Bank1 = 100
	a.Stats.Investments.Stocks = 50
	return a
}

func TestExport_UploadsSnapshot(t *testing.T) {
	var body []byte
	var ct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		ct = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	in := stubAWS(t, srv.URL+"/upload")
	a := testAccount()

	key, err := NewExporter(testConfig(), srv.Client()).Export(context.Background(), a)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^exports/\d{4}/\d{2}/\d{2}/`+a.ID+`-[0-9a-f-]{36}\.json$`), key)
	assert.Equal(t, "patrimonio", aws.ToString(in.Bucket))
	assert.Equal(t, key, aws.ToString(in.Key))
	assert.Equal(t, "application/json", ct)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "a@x.com", snap.Email)
	assert.Equal(t, 150.0, snap.Total)
	assert.NotContains(t, string(body), "passwordHash")
	assert.NotContains(t, string(body), "salt")
}

func TestExport_UploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("SignatureDoesNotMatch"))
	}))
	defer srv.Close()
	stubAWS(t, srv.URL)

	_, err := NewExporter(testConfig(), srv.Client()).Export(context.Background(), testAccount())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestExport_PresignError(t *testing.T) {
	stubAWS(t, "")
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign boom")
	}

	_, err := NewExporter(testConfig(), nil).Export(context.Background(), testAccount())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign put: presign boom")
}

func TestExport_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}

	_, err := NewExporter(testConfig(), nil).Export(context.Background(), testAccount())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 client: no region")
}

func TestExport_RejectsGuestAndMissingBucket(t *testing.T) {
	_, err := NewExporter(testConfig(), nil).Export(context.Background(), models.GuestAccount())
	require.ErrorIs(t, err, common.ErrGuestAccount)

	_, err = NewExporter(Config{}, nil).Export(context.Background(), testAccount())
	require.Error(t, err)
}

func TestNewSnapshot(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))
	s := NewSnapshot(testAccount(), now)

	assert.Equal(t, 100.0, s.Liquid)
	assert.Equal(t, 50.0, s.Invested)
	assert.Equal(t, time.UTC, s.ExportedAt.Location())
}
