// Package utils carries small cross-cutting helpers.
package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator purges response-cache namespaces after mutations.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{rdb}
}

func (ci *CacheInvalidator) purge(ctx context.Context, pattern string) {
	iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEventsList drops every cached events-list page.
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	ci.purge(ctx, "cache:events:list:*")
}

// PurgeEventItem drops cached event detail responses. Keys embed a
// hash of the id, so the whole namespace goes.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id string) {
	ci.purge(ctx, "cache:events:item:*")
}

// PurgeTemplates drops the cached template list.
func (ci *CacheInvalidator) PurgeTemplates(ctx context.Context) {
	ci.purge(ctx, "cache:templates:list:*")
}
