package redisstore

import "github.com/redis/go-redis/v9"

// KEYS: queue zset, entries hash, sequence counter. ARGV: actor id, payload.
// Returns the new sequence, or -1 when the actor is already queued.
var appendScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
  return -1
end
local seq = redis.call('INCR', KEYS[3])
redis.call('ZADD', KEYS[1], seq, ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return seq
`)

// KEYS: queue zset, entries hash. Returns {actor, score, payload} or nil.
var popScript = redis.NewScript(`
local head = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
if #head == 0 then
  return false
end
local payload = redis.call('HGET', KEYS[2], head[1]) or ''
redis.call('ZREM', KEYS[1], head[1])
redis.call('HDEL', KEYS[2], head[1])
return {head[1], head[2], payload}
`)

// KEYS: queue zset, entries hash. ARGV: actor id. Returns removed count.
var removeScript = redis.NewScript(`
local removed = redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
return removed
`)

// KEYS: every queue zset followed by every entries hash. ARGV: number of
// queue keys. Returns entries removed.
var clearScript = redis.NewScript(`
local queues = tonumber(ARGV[1])
local total = 0
for i = 1, queues do
  total = total + redis.call('ZCARD', KEYS[i])
end
if #KEYS > 0 then
  redis.call('DEL', unpack(KEYS))
end
return total
`)

// KEYS: lock key. ARGV: token. Deletes the lock only if this caller holds it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)
