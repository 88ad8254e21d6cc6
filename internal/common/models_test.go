package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NamanBalaji/uploadsim/internal/common"
)

func TestUploadTaskPercentage(t *testing.T) {
	testCases := []struct {
		progress float64
		expected int
	}{
		{0, 0},
		{0.12, 12},
		{0.456, 46},
		{0.999, 100},
		{1, 100},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, common.UploadTask{Progress: tc.progress}.Percentage())
	}
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "Inserted", common.ChangeInserted.String())
	assert.Equal(t, "Activated", common.ChangeActivated.String())
	assert.Equal(t, "Progressed", common.ChangeProgressed.String())
	assert.Equal(t, "Completed", common.ChangeCompleted.String())
	assert.Equal(t, "Removed", common.ChangeRemoved.String())
	assert.Equal(t, "Unknown(9)", common.ChangeKind(9).String())
}
