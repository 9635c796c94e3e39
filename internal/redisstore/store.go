package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courtq/internal/config"
	"courtq/internal/queue"
)

const defaultLockTTL = 5 * time.Second

// Options configures key layout and locking.
type Options struct {
	KeyPrefix string
	Resources []queue.Resource
	LockTTL   time.Duration
}

// Store implements the queue, session, and grant storage on Redis.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	resources []queue.Resource
	lockTTL   time.Duration
	ownClient bool
}

type entryPayload struct {
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type scopePayload struct {
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

type grantPayload struct {
	CanStart  bool      `json:"can_start"`
	CanEnd    bool      `json:"can_end"`
	CanClear  bool      `json:"can_clear"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New wraps an existing client. The caller keeps ownership of client.
func New(client redis.UniversalClient, opts Options) *Store {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "courtq"
	}
	resources := opts.Resources
	if len(resources) == 0 {
		resources = queue.DefaultResources
	}
	ttl := opts.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Store{
		client:    client,
		prefix:    prefix,
		resources: slices.Clone(resources),
		lockTTL:   ttl,
	}
}

// Open connects to the configured Redis server and verifies it answers.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	resources, err := queue.ParseResources(cfg.Courts.Names)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Store.RedisAddr,
		DB:       cfg.Store.RedisDB,
		Password: cfg.Store.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Store.RedisAddr, err)
	}
	store := New(client, Options{
		KeyPrefix: cfg.Store.KeyPrefix,
		Resources: resources,
		LockTTL:   cfg.LockTTL(),
	})
	store.ownClient = true
	return store, nil
}

// Close releases the client when the store created it.
func (s *Store) Close() error {
	if s == nil || !s.ownClient {
		return nil
	}
	return s.client.Close()
}

func (s *Store) queueKey(res queue.Resource) string   { return s.prefix + ":queue:" + string(res) }
func (s *Store) entriesKey(res queue.Resource) string { return s.prefix + ":entries:" + string(res) }
func (s *Store) lockKey(res queue.Resource) string    { return s.prefix + ":lock:" + string(res) }
func (s *Store) seqKey() string                       { return s.prefix + ":seq" }
func (s *Store) scopesKey() string                    { return s.prefix + ":scopes" }
func (s *Store) grantsKey(scopeID string) string      { return s.prefix + ":grants:" + scopeID }

// Append inserts an entry at the tail of the resource queue.
func (s *Store) Append(ctx context.Context, resource queue.Resource, actorID, displayName string) (*queue.Entry, error) {
	if actorID == "" {
		return nil, errors.New("actor id is required")
	}
	created := time.Now().UTC()
	payload, err := json.Marshal(entryPayload{DisplayName: displayName, CreatedAt: created})
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	seq, err := appendScript.Run(ctx, s.client,
		[]string{s.queueKey(resource), s.entriesKey(resource), s.seqKey()},
		actorID, string(payload),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("append entry: %w", err)
	}
	if seq < 0 {
		return nil, fmt.Errorf("append %s on %s: %w", actorID, resource, queue.ErrDuplicateMembership)
	}
	return &queue.Entry{
		Resource:    resource,
		ActorID:     actorID,
		DisplayName: displayName,
		Sequence:    seq,
		CreatedAt:   created,
	}, nil
}

// Ordered returns every entry for the resource, head first.
func (s *Store) Ordered(ctx context.Context, resource queue.Resource) ([]queue.Entry, error) {
	var (
		members *redis.ZSliceCmd
		names   *redis.MapStringStringCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		members = pipe.ZRangeWithScores(ctx, s.queueKey(resource), 0, -1)
		names = pipe.HGetAll(ctx, s.entriesKey(resource))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	payloads := names.Val()
	entries := make([]queue.Entry, 0, len(members.Val()))
	for _, member := range members.Val() {
		actorID, _ := member.Member.(string)
		entries = append(entries, decodeEntry(resource, actorID, int64(member.Score), payloads[actorID]))
	}
	return entries, nil
}

func decodeEntry(resource queue.Resource, actorID string, seq int64, raw string) queue.Entry {
	entry := queue.Entry{Resource: resource, ActorID: actorID, Sequence: seq}
	var payload entryPayload
	if raw != "" && json.Unmarshal([]byte(raw), &payload) == nil {
		entry.DisplayName = payload.DisplayName
		entry.CreatedAt = payload.CreatedAt
	}
	return entry
}

// PopHeadIfUnlocked removes and returns the head when no other process holds
// the court's pop lock. It returns (nil, nil) when locked or empty.
func (s *Store) PopHeadIfUnlocked(ctx context.Context, resource queue.Resource) (*queue.Entry, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	lockKey := s.lockKey(resource)
	acquired, err := s.client.SetNX(ctx, lockKey, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire pop lock: %w", err)
	}
	if !acquired {
		return nil, nil
	}
	defer func() {
		// Release on a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, s.client, []string{lockKey}, token).Err()
	}()

	raw, err := popScript.Run(ctx, s.client, []string{s.queueKey(resource), s.entriesKey(resource)}).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop head of %s: %w", resource, err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("pop head of %s: unexpected reply %v", resource, raw)
	}
	actorID, _ := raw[0].(string)
	scoreText, _ := raw[1].(string)
	payload, _ := raw[2].(string)
	seq, err := strconv.ParseFloat(scoreText, 64)
	if err != nil {
		return nil, fmt.Errorf("pop head of %s: parse sequence: %w", resource, err)
	}
	entry := decodeEntry(resource, actorID, int64(seq), payload)
	return &entry, nil
}

// RemoveAt deletes the actor's entry on the resource regardless of position.
func (s *Store) RemoveAt(ctx context.Context, resource queue.Resource, actorID string) (bool, error) {
	removed, err := removeScript.Run(ctx, s.client,
		[]string{s.queueKey(resource), s.entriesKey(resource)}, actorID,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("remove entry: %w", err)
	}
	return removed > 0, nil
}

// Clear removes every entry of every configured resource.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	keys := make([]string, 0, 2*len(s.resources))
	for _, res := range s.resources {
		keys = append(keys, s.queueKey(res))
	}
	for _, res := range s.resources {
		keys = append(keys, s.entriesKey(res))
	}
	removed, err := clearScript.Run(ctx, s.client, keys, len(s.resources)).Int64()
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return removed, nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
