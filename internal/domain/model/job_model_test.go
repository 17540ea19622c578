package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceUnmarshalText(t *testing.T) {
	var r Resource
	require.NoError(t, r.UnmarshalText([]byte(" Users ")))
	assert.Equal(t, ResourceUsers, r)

	require.Error(t, r.UnmarshalText([]byte("projects")))
}

func TestCreateJobRequestValidate(t *testing.T) {
	valid := CreateJobRequest{JobKey: "import-2024-06", Resource: ResourceUsers, Status: JobStatusQueued}
	require.NoError(t, valid.Validate())

	cases := map[string]CreateJobRequest{
		"blank key":    {JobKey: "  ", Resource: ResourceUsers, Status: JobStatusQueued},
		"key too long": {JobKey: strings.Repeat("k", 101), Resource: ResourceUsers, Status: JobStatusQueued},
		"bad resource": {JobKey: "k", Resource: Resource("projects"), Status: JobStatusQueued},
		"bad status":   {JobKey: "k", Resource: ResourceUsers, Status: JobStatus("paused")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
}

func TestFormatValid(t *testing.T) {
	assert.True(t, FormatNDJSON.Valid())
	assert.False(t, Format("csv").Valid())
	assert.False(t, Format("").Valid())
}
