package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// fakeRedis answers commands from an in-memory map instead of a server.
// Installed as a hook it never calls next, so the client never dials.
type fakeRedis struct {
	data map[string]string
	err  error
	sent [][]interface{}
}

func newFakeClient() (*redis.Client, *fakeRedis) {
	f := &fakeRedis{data: make(map[string]string)}
	client := redis.NewClient(&redis.Options{Addr: "redis.invalid:6379", Protocol: 2})
	client.AddHook(f)
	return client, f
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		args := cmd.Args()
		f.sent = append(f.sent, args)
		if f.err != nil {
			return f.err
		}
		var key string
		if len(args) > 1 {
			key = str(args[1])
		}
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[key]
			if !ok {
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			if c.Name() == "set" {
				f.data[key] = str(args[2])
				c.SetVal("OK")
				return nil
			}
			c.SetVal("PONG")
		case *redis.BoolCmd:
			if _, held := f.data[key]; held {
				c.SetVal(false)
				return nil
			}
			f.data[key] = str(args[2])
			c.SetVal(true)
		case *redis.IntCmd:
			var n int64
			for _, k := range args[1:] {
				if _, ok := f.data[str(k)]; ok {
					delete(f.data, str(k))
					n++
				}
			}
			c.SetVal(n)
		default:
			return fmt.Errorf("fake redis: unsupported command %s", cmd.Name())
		}
		return nil
	}
}

func (f *fakeRedis) last() []interface{} {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func str(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
