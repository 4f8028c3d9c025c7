package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying
type Retry struct {
	ctx                context.Context
	maxElapsedTime     time.Duration
	maxInterval        time.Duration
	acceptableDuration time.Duration
	onError            func(err error, isDurationAcceptable bool) error
}

func NewRetry() *Retry {
	return &Retry{
		ctx: context.Background(),
	}
}

func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

// Errors that happen within this duration since the first try are reported as acceptable
func (self *Retry) WithAcceptableDuration(v time.Duration) *Retry {
	self.acceptableDuration = v
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

// Called upon every failure. Returning backoff.Permanent(err) stops retrying.
func (self *Retry) WithOnError(v func(err error, isDurationAcceptable bool) error) *Retry {
	self.onError = v
	return self
}

func (self *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = self.maxElapsedTime
	if self.maxInterval > 0 {
		b.MaxInterval = self.maxInterval
	}

	started := time.Now()
	operation := func() error {
		err := f()
		if err == nil || self.onError == nil {
			return err
		}
		return self.onError(err, time.Since(started) < self.acceptableDuration)
	}

	return backoff.Retry(operation, backoff.WithContext(b, self.ctx))
}
