// Package notifications publishes realtime events (new messages, invitation changes)
// over Redis pub/sub. Every publish is a no-op without Redis; clients still converge
// through periodic thread refresh.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types carried in Event.Type.
const (
	EventMessageCreated     = "message_created"
	EventInvitationCreated  = "invitation_created"
	EventInvitationAccepted = "invitation_accepted"
	EventInvitationDeclined = "invitation_declined"
)

const (
	userChannelPrefix   = "notifications:user:"
	threadChannelPrefix = "thread:"
)

// Event is the JSON envelope published on every channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.rdb != nil
}

func (n *Notifier) publish(ctx context.Context, channel string, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	if !n.enabled() {
		return nil
	}
	return n.publish(ctx, UserChannel(userID), ev)
}

// PublishThread announces a new message on a thread channel.
func (n *Notifier) PublishThread(ctx context.Context, thread models.Thread, msg models.ThreadMessage) error {
	if !n.enabled() {
		return nil
	}
	return n.publish(ctx, ThreadChannel(thread), Event{Type: EventMessageCreated, Payload: msg})
}

// StartThreadSubscriber subscribes to every thread channel and calls onMessage with the
// parsed thread and the raw payload until ctx is cancelled.
func (n *Notifier) StartThreadSubscriber(ctx context.Context, onMessage func(thread models.Thread, payload string)) error {
	if !n.enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, threadChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe threads: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				thread, err := ParseThreadChannel(msg.Channel)
				if err != nil {
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in thread subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(thread, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ThreadChannel derives the Redis channel name for a message thread.
func ThreadChannel(thread models.Thread) string {
	return threadChannelPrefix + thread.String()
}

// ParseThreadChannel is the inverse of ThreadChannel.
func ParseThreadChannel(channel string) (models.Thread, error) {
	rest, ok := strings.CutPrefix(channel, threadChannelPrefix)
	if !ok {
		return models.Thread{}, fmt.Errorf("not a thread channel: %q", channel)
	}
	scopeRaw, idRaw, ok := strings.Cut(rest, ":")
	if !ok {
		return models.Thread{}, fmt.Errorf("malformed thread channel: %q", channel)
	}
	scope, err := models.ParseThreadScope(scopeRaw)
	if err != nil {
		return models.Thread{}, err
	}
	id, err := strconv.ParseUint(idRaw, 10, 64)
	if err != nil {
		return models.Thread{}, fmt.Errorf("malformed thread id in %q: %w", channel, err)
	}
	return models.Thread{Scope: scope, ID: uint(id)}, nil
}
