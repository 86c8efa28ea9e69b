// Package redislock serializa la ingesta entre réplicas con un lock SET NX PX en Redis.
// Sin Redis se cae a un mutex de proceso.
package redislock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Leadius-api/pkg/config"
)

// Locker intenta tomar un lock sin esperar. ok=false significa que otro lo tiene.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// NewClient conecta a Redis. Devuelve (nil, nil) si no hay dirección configurada y
// (nil, err) si no responde, para que el llamador decida degradar al lock local.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// New elige el lock de Redis si hay cliente y el local si no.
func New(client *redis.Client) Locker {
	if client == nil {
		return NewLocal()
	}
	return NewRedis(client)
}

// unlockScript borra la clave solo si sigue siendo nuestra.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis lock distribuido de un solo dueño con TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis construye el lock sobre un cliente ya conectado.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// TryLock SET key token NX PX ttl.
func (l *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	unlock := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return unlock, true, nil
}

// Local lock en memoria por clave, válido dentro de un proceso. Ignora el TTL.
type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocal construye el lock de proceso.
func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

// TryLock toma la clave si está libre.
func (l *Local) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
