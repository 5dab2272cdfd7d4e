package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
)

// storeCaller выполняет обращения к хранилищу с таймаутом на каждую попытку
// и повторяет их с экспоненциальной задержкой, пока хранилище недоступно
type storeCaller struct {
	timeout time.Duration
	retries uint64
	backoff time.Duration
	logger  *zap.Logger
}

func newStoreCaller(opts Options, logger *zap.Logger) storeCaller {
	return storeCaller{
		timeout: opts.StoreTimeout,
		retries: opts.StoreRetries,
		backoff: opts.RetryBackoff,
		logger:  logger,
	}
}

func (c storeCaller) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}

		// таймаут попытки, а не отмена вызывающим
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !booking.IsRetryable(err) {
			err = fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, err)
		}

		if booking.IsRetryable(err) {
			c.logger.Warn("Store call failed",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}

		return err
	})
}
