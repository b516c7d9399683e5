package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroadcaster publica atualizações de partida no canal Pub/Sub.
// É o lado produtor do fan-out: o serviço de partidas publica aqui e o
// subscriber da API repassa aos clientes WebSocket. O canal vem da
// config para publisher e subscriber sempre falarem no mesmo lugar.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisBroadcaster(r *redis.Client, channel string, log *zap.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel, log: log}
}

// BroadcastMatchUpdate publica best-effort; falha de broadcast nunca
// derruba a operação de negócio que a originou
func (b *RedisBroadcaster) BroadcastMatchUpdate(ctx context.Context, matchID string, payload any) {
	msg := MatchUpdate{MatchID: matchID, Payload: payload}
	bs, _ := json.Marshal(msg)

	pctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := b.r.Publish(pctx, b.channel, bs).Err(); err != nil {
		b.log.Warn("ws broadcast publish failed", zap.Error(err))
	}
}

// StartRedisSubscriber escuta o canal Pub/Sub e repassa as atualizações
// recebidas para os clientes conectados via Hub
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd MatchUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("ws subscriber unmarshal failed", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
