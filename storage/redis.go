package storage

import (
	"context"
	"os"
	"time"

	"github.com/garyburd/redigo/redis"

	"intlist/config"
	"intlist/types"
)

// RedisStore keeps every list as a Redis list under prefix + "values:" +
// name. A size key under prefix + "size:" + name marks the list as saved, so
// empty lists can be told apart from missing ones.
type RedisStore struct {
	pool   *redis.Pool
	prefix string
}

func NewRedisStore(conf config.Redis) *RedisStore {
	return newRedisStore(&redis.Pool{
		MaxIdle:     4,
		IdleTimeout: time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", conf.Addr, redis.DialConnectTimeout(5*time.Second))
		},
	}, conf.Prefix)
}

func newRedisStore(pool *redis.Pool, prefix string) *RedisStore {
	return &RedisStore{pool: pool, prefix: prefix}
}

func (s *RedisStore) Load(ctx context.Context, name string, list *types.IntegerList) (int, error) {
	if err := checkName("load", name); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	conn := s.pool.Get()
	defer conn.Close()

	key := s.key(name)
	exists, err := redis.Bool(conn.Do("EXISTS", s.sizeKey(name)))
	if err != nil {
		return 0, &types.FileError{Op: "load", Path: key, Err: err}
	}
	if !exists {
		return 0, &types.FileError{Op: "load", Path: key, Err: os.ErrNotExist}
	}

	values, err := redis.Ints(conn.Do("LRANGE", key, 0, -1))
	if err != nil {
		return 0, &types.FileError{Op: "load", Path: key, Err: err}
	}

	list.Append(values...)
	return len(values), nil
}

func (s *RedisStore) Save(ctx context.Context, name string, list *types.IntegerList) error {
	if err := checkName("save", name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn := s.pool.Get()
	defer conn.Close()

	key := s.key(name)
	args := redis.Args{}.Add(key)
	list.Each(func(v int) bool {
		args = args.Add(v)
		return true
	})

	conn.Send("MULTI")
	conn.Send("DEL", key)
	if list.Len() > 0 {
		conn.Send("RPUSH", args...)
	}
	conn.Send("SET", s.sizeKey(name), list.Len())
	if _, err := conn.Do("EXEC"); err != nil {
		return &types.FileError{Op: "save", Path: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.pool.Close()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + "values:" + name
}

func (s *RedisStore) sizeKey(name string) string {
	return s.prefix + "size:" + name
}
