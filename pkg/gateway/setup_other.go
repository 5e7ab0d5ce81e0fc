//go:build !linux

package gateway

import (
	"context"

	"github.com/roffe/slcanx/pkg/socketcan"
)

func Setup(ctx context.Context, cfg *SetupConfig) error {
	return socketcan.ErrUnsupported
}
