package s3impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "captures",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
		KeyPrefix:       "/stories/",
	})
	require.NoError(t, err)
	assert.Equal(t, "stories/screenshot-1.png", s.ObjectKey("screenshot-1.png"))

	s.prefix = ""
	assert.Equal(t, "screenshot-1.png", s.ObjectKey("screenshot-1.png"))
}
