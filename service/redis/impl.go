package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/base/metrics"
	"github.com/Alanle1011/contract-marketplace/domain/keys"
)

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// New redis service over the given pool
func New(name string, met metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   met,
		pools: pools,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	conn := r.pools.Src.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}
	return conn, nil
}

func (r *redImpl) connDo(c ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// Closing conn explicitly asap improves redigo's performance,
	// because the longer a connection is held the more connections
	// the pool needs to handle at the same time.
	if cerr := conn.Close(); cerr != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) tags(funcName, key string) []string {
	return []string{
		"func", funcName,
		"cluster", r.name,
		"prefix", keys.GetPrefix(key),
	}
}

func (r *redImpl) Get(c ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(c, "GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	} else if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if ttl > 0 {
		_, err = r.connDo(c, "SET", key, value, "EX", int(ttl.Seconds()))
	} else {
		_, err = r.connDo(c, "SET", key, value)
	}
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return err
	}
	return nil
}

func (r *redImpl) Del(c ctx.Ctx, key string) (int, error) {
	tags := r.tags("del", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(c, "DEL", key))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Exists(c ctx.Ctx, key string) (bool, error) {
	tags := r.tags("exists", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(c, "EXISTS", key))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) Incrby(c ctx.Ctx, key string, diff int) (int64, error) {
	tags := r.tags("incrby", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int64(r.connDo(c, "INCRBY", key, diff))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	return n, nil
}

func (r *redImpl) TTL(c ctx.Ctx, key string) (int64, error) {
	tags := r.tags("ttl", key)
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int64(r.connDo(c, "TTL", key))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	return n, nil
}
