package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "13.pdf", displayName("inv-13.pdf"))
	assert.Equal(t, "13.pdf", displayName("archive/inv-13.pdf"))
	assert.Equal(t, "report.pdf", displayName("report.pdf"))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(fmt.Errorf("get: %w", &types.NoSuchKey{})))
	assert.True(t, isMissing(&types.NotFound{}))
	assert.False(t, isMissing(errors.New("access denied")))
}
