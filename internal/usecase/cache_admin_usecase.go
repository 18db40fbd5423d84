package usecase

import (
	"context"
)

// CacheStatusOutput reports the size of the identity cache.
type CacheStatusOutput struct {
	TotalEmailsInCache int `json:"totalEmailsInCache"`
}

// ClearEmailOutput acknowledges a cache removal.
type ClearEmailOutput struct {
	Message      string `json:"message"`
	CurrentCount int    `json:"currentCount"`
}

// CacheAdminUsecase exposes the operational cache endpoints.
type CacheAdminUsecase interface {
	Status(ctx context.Context) *CacheStatusOutput
	ClearEmail(ctx context.Context, email string) (*ClearEmailOutput, error)
}
