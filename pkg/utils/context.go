package utils

import (
	"context"
	"fmt"

	"golang-market-alert/pkg/logger"
)

// ShouldContinue reports whether ctx is still live, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// GoSafe runs fn in a goroutine and turns a panic into a logged error.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic", logger.ErrorField(fmt.Errorf("%v", r)))
			}
		}()
		fn()
	}()
}
