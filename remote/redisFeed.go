package remote

import (
	"context"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultChangeChannel = "pos:changes"

// RedisFeed carries change notifications over a redis pub/sub channel. It is
// both the Notifier the store publishes to and the ChangeFeed the sync engine
// subscribes to.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logg    *logrus.Logger
}

func NewRedisFeed(client *redis.Client, logg *logrus.Logger) *RedisFeed {
	return &RedisFeed{client: client, channel: defaultChangeChannel, logg: logg}
}

// Notify is best-effort: a missed notification only delays the next re-pull,
// it never loses data, so publish failures are logged and swallowed.
func (f *RedisFeed) Notify(ctx context.Context, table string) {
	if f.client == nil {
		return
	}
	if err := f.client.Publish(ctx, f.channel, table).Err(); err != nil {
		config.LogError(f.logg, "redisFeed.go", "Notify", "publish", table, err)
	}
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan string, error) {
	if f.client == nil {
		return nil, redis.ErrClosed
	}
	sub := f.client.Subscribe(ctx, f.channel)
	// Force the subscription handshake so a dead redis fails here, not later.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
