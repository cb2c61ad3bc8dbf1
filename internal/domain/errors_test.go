package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"remote http status", &RemoteError{Reason: "http_status:500"}, "http_status:500"},
		{"wrapped remote", fmt.Errorf("select: %w", &RemoteError{Reason: "no such file"}), "no such file"},
		{"offline", ErrServerOffline, "network_error"},
		{"wrapped offline", fmt.Errorf("list: %w", ErrServerOffline), "network_error"},
		{"bad response", ErrBadResponse, "bad_response"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureReason(tt.err))
		})
	}
}

func TestAssetDisplayTitle(t *testing.T) {
	assert.Equal(t, "lecture1", Asset{Name: "lecture1.pdf"}.DisplayTitle())
	assert.Equal(t, "SLIDES", Asset{Name: "SLIDES.PDF"}.DisplayTitle())
	assert.Equal(t, "notes", Asset{Name: "notes"}.DisplayTitle())
}

func TestAssetFormattedSize(t *testing.T) {
	assert.Equal(t, "", Asset{}.FormattedSize())
	assert.Equal(t, "512 B", Asset{SizeBytes: 512}.FormattedSize())
	assert.Equal(t, "2 KB", Asset{SizeBytes: 2048}.FormattedSize())
	assert.Equal(t, "1.5 MB", Asset{SizeBytes: 3 * 1024 * 1024 / 2}.FormattedSize())
}
