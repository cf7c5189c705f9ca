package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	UserExternalKeyPrefix = "user:ext:%s"
	UserHandleKeyPrefix   = "user:handle:%s"
	PollKeyPrefix         = "poll:%d"
)

const (
	UserTTL = 5 * time.Minute
	PollTTL = 30 * time.Second
)

func UserKey(id uint) string {
	return fmt.Sprintf(UserKeyPrefix, id)
}

func UserExternalKey(subject string) string {
	return fmt.Sprintf(UserExternalKeyPrefix, subject)
}

func UserHandleKey(handle string) string {
	return fmt.Sprintf(UserHandleKeyPrefix, handle)
}

func PollKey(id uint) string {
	return fmt.Sprintf(PollKeyPrefix, id)
}

// Invalidate deletes the given keys. Errors are counted by the metrics hook.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops every cached view of a user.
func InvalidateUser(ctx context.Context, id uint, subject, handle string) {
	keys := []string{UserKey(id)}
	if subject != "" {
		keys = append(keys, UserExternalKey(subject))
	}
	if handle != "" {
		keys = append(keys, UserHandleKey(handle))
	}
	Invalidate(ctx, keys...)
}

// InvalidatePoll drops the cached poll.
func InvalidatePoll(ctx context.Context, id uint) {
	Invalidate(ctx, PollKey(id))
}
