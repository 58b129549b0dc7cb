package gpt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLookupPartitionTypeKnown(t *testing.T) {
	info := LookupPartitionType(uuid.MustParse("0FC63DAF-8483-4772-8E79-3D69D8477DE4"))
	assert.Equal(t, "Linux", info.OSFamily)
	assert.Equal(t, "Linux filesystem data", info.Description)
}

func TestLookupPartitionTypeUnknown(t *testing.T) {
	info := LookupPartitionType(uuid.New())
	assert.Equal(t, "Unknown", info.OSFamily)
	assert.Equal(t, "Unknown", info.Description)
}
