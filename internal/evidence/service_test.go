package evidence

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/platform/config"
	"campusvoice/pkg/apperrors"
)

func testConfig() config.S3Config {
	return config.S3Config{
		BaseEndpoint: "http://localhost:9000",
		Region:       "us-east-1",
		Bucket:       "campusvoice-evidence",
		AccessKey:    "minio",
		SecretKey:    "minio123",
	}
}

func stubPresign(t *testing.T) {
	t.Helper()

	origPut := presignPutObject
	origGet := presignGetObject
	presignPutObject = func(_ *s3.PresignClient, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://localhost:9000/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key) + "?sig=put"}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://localhost:9000/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key) + "?sig=get"}, nil
	}
	t.Cleanup(func() {
		presignPutObject = origPut
		presignGetObject = origGet
	})
}

func TestStorageKey_Shape(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(testConfig()).WithClock(func() time.Time { return fixed })

	key := svc.StorageKey("student-1", "leak.jpg")
	assert.Equal(t, "evidence/student-1/"+itoa(fixed.UnixNano())+"_leak.jpg", key)
}

func TestStorageKey_StripsPathComponents(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(testConfig()).WithClock(func() time.Time { return fixed })

	key := svc.StorageKey("student-1", "../../etc/passwd")
	assert.Equal(t, "evidence/student-1/"+itoa(fixed.UnixNano())+"_passwd", key)

	key = svc.StorageKey("student-1", `..\..\boot.ini`)
	assert.Equal(t, "evidence/student-1/"+itoa(fixed.UnixNano())+"_boot.ini", key)
}

func TestPresignUpload(t *testing.T) {
	stubPresign(t)
	svc := NewService(testConfig())

	up, err := svc.PresignUpload(context.Background(), "student-1", "leak.jpg")
	require.NoError(t, err)
	assert.Contains(t, up.Key, "evidence/student-1/")
	assert.Contains(t, up.Key, "_leak.jpg")
	assert.Contains(t, up.URL, up.Key)
	assert.Contains(t, up.URL, "sig=put")
}

func TestPresignDownload(t *testing.T) {
	stubPresign(t)
	svc := NewService(testConfig())

	url, err := svc.PresignDownload(context.Background(), "evidence/student-1/1700000000_leak.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "evidence/student-1/1700000000_leak.jpg")
	assert.Contains(t, url, "sig=get")
}

func TestPresign_Validation(t *testing.T) {
	svc := NewService(testConfig())

	_, err := svc.PresignUpload(context.Background(), "student-1", "  ")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))

	_, err = svc.PresignDownload(context.Background(), "")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}

func TestPresign_DisabledWithoutEndpoint(t *testing.T) {
	svc := NewService(config.S3Config{})
	assert.False(t, svc.Enabled())

	_, err := svc.PresignUpload(context.Background(), "student-1", "leak.jpg")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
