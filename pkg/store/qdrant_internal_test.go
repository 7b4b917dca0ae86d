package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAlreadyExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc already exists", status.Error(codes.AlreadyExists, "collection `docs` exists"), true},
		{"other grpc code", status.Error(codes.Unavailable, "already exists"), false},
		{"plain error mentioning it", errors.New("collection already exists"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alreadyExists(tt.err))
		})
	}
}
