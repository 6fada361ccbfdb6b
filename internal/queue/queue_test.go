package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_IsIncremental(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want bool
	}{
		{"explicit true", Options{Incremental: "true"}, true},
		{"explicit false, no files", Options{Incremental: "false"}, false},
		{"changed files present", Options{ChangedFiles: []string{"a.go"}}, true},
		{"removed files present", Options{RemovedFiles: []string{"a.go"}}, true},
		{"nothing set", Options{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.opts.IsIncremental())
		})
	}
}

func TestNewConsumer_UnreachableAddrReturnsConnectivityError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewConsumer(ctx, "127.0.0.1:1", "", "jobs")
	assert.Error(t, err)
}
