package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the redis list notifications travel on.
const DefaultKey = "portal:notifications"

// Message is one queued item. Type lets consumers skip what they do not handle.
type Message struct {
	Type string
	Body []byte
}

// Queue carries messages from the API to whoever delivers them.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Message, error)
}

// InMemory hands messages to a consumer in the same process.
type InMemory struct {
	ch chan Message
}

// NewInMemory creates a queue buffering up to size messages. Publish blocks
// while the buffer is full.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Message, size)}
}

func (q *InMemory) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel that closes when ctx is done.
func (q *InMemory) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			var msg Message
			select {
			case msg = <-q.ch:
			case <-ctx.Done():
				return
			}
			if !forward(ctx, out, msg) {
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue is a redis list: LPUSH to publish, BRPOP to consume, so
// messages come out oldest first and survive API restarts.
type RedisQueue struct {
	client  *redis.Client
	key     string
	poll    time.Duration
	backoff time.Duration
}

// NewRedisQueue uses key, or DefaultKey when key is empty.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key, poll: 5 * time.Second, backoff: 500 * time.Millisecond}
}

func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	return q.client.LPush(ctx, q.key, encode(msg)).Err()
}

// Pending reports how many messages wait on the list.
func (q *RedisQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Consume pops until ctx is done. Connection errors are retried after a
// short pause so a consumer started before redis comes up keeps waiting.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for ctx.Err() == nil {
			res, err := q.client.BRPop(ctx, q.poll, q.key).Result()
			switch {
			case errors.Is(err, redis.Nil):
				continue
			case err != nil:
				select {
				case <-time.After(q.backoff):
				case <-ctx.Done():
				}
				continue
			case len(res) != 2:
				continue
			}
			if !forward(ctx, out, decode(res[1])) {
				return
			}
		}
	}()
	return out, nil
}

func forward(ctx context.Context, out chan<- Message, msg Message) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// encode stores a message as "type|body". Bodies may contain '|'.
func encode(msg Message) string {
	return msg.Type + "|" + string(msg.Body)
}

func decode(s string) Message {
	typ, body, ok := strings.Cut(s, "|")
	if !ok {
		return Message{Body: []byte(s)}
	}
	return Message{Type: typ, Body: []byte(body)}
}
