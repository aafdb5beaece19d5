package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PropertyKeyPrefix         = "property:%d"
	PropertyListVersionKey    = "properties:version"
	PropertyListKeyPrefix     = "properties:v%d"
	BuilderPropertiesPrefix   = "properties:builder:%d:v%d"
	ConversationListKeyPrefix = "conversations:user:%d"
)

const (
	PropertyTTL     = 30 * time.Second
	ListTTL         = 30 * time.Second
	ConversationTTL = 10 * time.Second
)

func PropertyKey(id uint) string {
	return fmt.Sprintf(PropertyKeyPrefix, id)
}

// PropertyListKey returns the catalog list key for the current list version.
// Bumping the version orphans every cached list at once.
func PropertyListKey(ctx context.Context) string {
	return fmt.Sprintf(PropertyListKeyPrefix, listVersion(ctx))
}

func BuilderPropertiesKey(ctx context.Context, builderID uint) string {
	return fmt.Sprintf(BuilderPropertiesPrefix, builderID, listVersion(ctx))
}

func ConversationListKey(userID uint) string {
	return fmt.Sprintf(ConversationListKeyPrefix, userID)
}

func listVersion(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, PropertyListVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateProperty drops the cached property and every cached list that may contain it.
func InvalidateProperty(ctx context.Context, id uint) {
	Invalidate(ctx, PropertyKey(id))
	InvalidatePropertyLists(ctx)
}

func InvalidatePropertyLists(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, PropertyListVersionKey)
	}
}

func InvalidateConversations(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, ConversationListKey(id))
	}
	Invalidate(ctx, keys...)
}
