package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ReplayTTL is how long a Replay is kept for its idempotency key.
const ReplayTTL = 24 * time.Hour

var (
	_ ReplayCacher = new(ReplayMap)
	_ ReplayCacher = ReplayRedis{}
)

// A ReplayCacher can store responses paired to idempotency keys.
type ReplayCacher interface {
	// Claim stores rp under key when key is unused, reporting true.
	// Otherwise, it returns the Replay already stored and false.
	Claim(ctx context.Context, key string, rp Replay) (Replay, bool)
	Get(ctx context.Context, key string) (Replay, bool)
	Set(ctx context.Context, key string, rp Replay)
}

// A ReplayMap stores idempotency key, Replay value pairs in a map.
//
// Server restarts reset this map.
// A ReplayMap ought not be used for production environments running more than one server.
type ReplayMap struct {
	mu  sync.Mutex
	val map[string]replayMapVal
}

// A replayMapVal is stored in a ReplayMap,
// wrapping a Replay.
type replayMapVal struct {
	Replay

	at time.Time
}

// NewReplayMap constructs a ReplayMap
// for use in an Idempotent middleware as a cache.
func NewReplayMap() *ReplayMap { return &ReplayMap{val: make(map[string]replayMapVal)} }

// Claim implements ReplayCacher.
func (m *ReplayMap) Claim(ctx context.Context, key string, rp Replay) (Replay, bool) {
	if ctx.Err() != nil {
		return Replay{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict()
	if v, ok := m.val[key]; ok {
		return v.Replay.clone(), false
	}

	m.val[key] = replayMapVal{Replay: rp.clone(), at: time.Now()}
	return rp, true
}

// Get retrieves the result of the request matching the idempotency key
// much like a regular map.
func (m *ReplayMap) Get(ctx context.Context, key string) (Replay, bool) {
	if key == "" || ctx.Err() != nil {
		return Replay{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.val[key]
	if !ok || time.Since(v.at) > ReplayTTL {
		return Replay{}, false
	}

	return v.Replay.clone(), true
}

// Set overwrites the value paired to key in the map.
//
// For each call to Set, keys older than ReplayTTL are evicted.
func (m *ReplayMap) Set(ctx context.Context, key string, rp Replay) {
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict()
	at := time.Now()
	if v, ok := m.val[key]; ok {
		at = v.at
	}

	m.val[key] = replayMapVal{Replay: rp.clone(), at: at}
}

func (m *ReplayMap) evict() {
	for k, v := range m.val {
		if time.Since(v.at) > ReplayTTL {
			delete(m.val, k)
		}
	}
}

// A ReplayRedis connects to a Redis backend
// for the purposes of caching idempotent responses.
type ReplayRedis struct {
	client *redis.Client
}

// NewReplayRedis constructs a ReplayRedis with the options passed in.
func NewReplayRedis(opts *redis.Options) ReplayRedis {
	return ReplayRedis{client: redis.NewClient(opts)}
}

// Claim implements ReplayCacher by setting key only if it does not exist.
//
// When Redis cannot be reached, Claim reports true so the request is still served.
func (rr ReplayRedis) Claim(ctx context.Context, key string, rp Replay) (Replay, bool) {
	b, err := rp.GobEncode()
	if err != nil {
		return rp, true
	}

	ok, err := rr.client.SetNX(ctx, key, b, ReplayTTL).Result()
	if err != nil {
		return rp, true
	}

	if ok {
		return rp, true
	}

	existing, _ := rr.Get(ctx, key)
	return existing, false
}

// Get retrieves the Replay paired to key from the connected Redis backend.
func (rr ReplayRedis) Get(ctx context.Context, key string) (Replay, bool) {
	b, err := rr.client.Get(ctx, key).Bytes()
	if err != nil {
		return Replay{}, false
	}

	rp := new(Replay)
	if err := rp.GobDecode(b); err != nil {
		return Replay{}, false
	}

	return *rp, true
}

// Set saves the Replay by pairing it to the key in the Redis backend,
// keeping the expiry set when the key was claimed.
func (rr ReplayRedis) Set(ctx context.Context, key string, rp Replay) {
	b, err := rp.GobEncode()
	if err != nil {
		return
	}

	rr.client.SetArgs(ctx, key, b, redis.SetArgs{KeepTTL: true})
}
