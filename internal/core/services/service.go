package services

import "context"

// Service is a single use case. Decorators wrap a Service to add behaviour
// such as rate limiting or follow-up calls.
type Service[T any, S any] interface {
	Run(ctx context.Context, input T) (S, error)
}
