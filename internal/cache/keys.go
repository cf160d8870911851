package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	PostsPageKeyPrefix = "posts:page:%d:%d"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	PostsPageTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostsPageKey caches one page of the public feed. Keyed by page and size so
// different clients never see each other's page shape.
func PostsPageKey(page, pageSize int) string {
	return fmt.Sprintf(PostsPageKeyPrefix, page, pageSize)
}

// BlacklistKey marks a revoked token ID until its natural expiry.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// FirstPageSizes are the page sizes whose first feed page is cached. Other
// sizes, and every deeper page, always hit the database, which keeps
// invalidation a fixed set of keys.
var FirstPageSizes = []int{10, 20}

// InvalidatePostsList drops the cached first feed pages.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	for _, size := range FirstPageSizes {
		client.Del(ctx, PostsPageKey(1, size))
	}
}
