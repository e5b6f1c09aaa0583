package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/garyburd/redigo/redis"

	"intlist/config"
	"intlist/types"
)

func TestStores(t *testing.T) {
	stores := []struct {
		scenario string
		open     func(t *testing.T) Store
	}{
		{
			scenario: "file",
			open: func(t *testing.T) Store {
				return NewFileStore(t.TempDir())
			},
		},
		{
			scenario: "sqlite",
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "lists.db"))
				if err != nil {
					t.Fatal(err)
				}
				return s
			},
		},
		{
			scenario: "s3",
			open: func(t *testing.T) Store {
				return newS3Store(&fakeS3{objects: map[string][]byte{}}, config.S3{Bucket: "b", Prefix: "lists/"})
			},
		},
		{
			scenario: "redis",
			open: func(t *testing.T) Store {
				return newRedisStore(newFakeRedisPool(), "intlist:")
			},
		},
	}

	for _, store := range stores {
		t.Run(store.scenario, func(t *testing.T) {
			s := store.open(t)
			defer s.Close()
			testStore(t, s)
		})
	}
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		list := types.New()
		list.Append(3, 1, -4, 1, 5)

		if err := s.Save(ctx, "digits.txt", list); err != nil {
			t.Fatal(err)
		}

		loaded := types.New()
		loaded.PushBack(100)
		n, err := s.Load(ctx, "digits.txt", loaded)
		if err != nil {
			t.Fatal(err)
		}
		if n != 5 {
			t.Errorf("Load returned %d, want 5", n)
		}
		assertValues(t, loaded, 100, 3, 1, -4, 1, 5)
	})

	t.Run("save replaces", func(t *testing.T) {
		first := types.New()
		first.Append(1, 2, 3)
		second := types.New()
		second.Append(9)

		if err := s.Save(ctx, "replace.txt", first); err != nil {
			t.Fatal(err)
		}
		if err := s.Save(ctx, "replace.txt", second); err != nil {
			t.Fatal(err)
		}

		loaded := types.New()
		if _, err := s.Load(ctx, "replace.txt", loaded); err != nil {
			t.Fatal(err)
		}
		assertValues(t, loaded, 9)
	})

	t.Run("empty list", func(t *testing.T) {
		if err := s.Save(ctx, "empty.txt", types.New()); err != nil {
			t.Fatal(err)
		}

		loaded := types.New()
		if n, err := s.Load(ctx, "empty.txt", loaded); err != nil || n != 0 {
			t.Fatalf("Load = %d, %v", n, err)
		}
		assertValues(t, loaded)
	})

	t.Run("invalid name", func(t *testing.T) {
		list := types.New()
		list.PushBack(1)

		if _, err := s.Load(ctx, "a", list); !errors.Is(err, types.ErrInvalidName) {
			t.Errorf("Load error = %v, want ErrInvalidName", err)
		}
		if err := s.Save(ctx, "", list); !errors.Is(err, types.ErrInvalidName) {
			t.Errorf("Save error = %v, want ErrInvalidName", err)
		}
		assertValues(t, list, 1)
	})
}

func TestMissingEntries(t *testing.T) {
	ctx := context.Background()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "lists.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()

	stores := map[string]Store{
		"file":   NewFileStore(t.TempDir()),
		"sqlite": sqlite,
		"s3":     newS3Store(&fakeS3{objects: map[string][]byte{}}, config.S3{Bucket: "b"}),
		"redis":  newRedisStore(newFakeRedisPool(), "intlist:"),
	}

	for name, s := range stores {
		list := types.New()
		list.Append(1, 2)

		_, err := s.Load(ctx, "missing.txt", list)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: Load of a missing entry returned %v, want os.ErrNotExist", name, err)
		}
		assertValues(t, list, 1, 2)
	}
}

func TestFileStoreWritesDump(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	list := types.New()
	list.Append(1, 2, 3)
	if err := s.Save(context.Background(), "out.txt", list); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if expect := "List contains 3 elements.\n{ 1, 2, 3 }\n\n"; string(b) != expect {
		t.Errorf("dump = %q, want %q", b, expect)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.Storage{Backend: config.BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}

	if _, err := Open(config.Storage{Backend: "tape"}); err == nil {
		t.Error("Open(tape) succeeded")
	}
}

func assertValues(t *testing.T, list *types.IntegerList, v ...int) {
	t.Helper()

	if v == nil {
		v = []int{}
	}
	if values := list.Values(); !reflect.DeepEqual(values, v) {
		t.Errorf("list values mismatch, expected %v but found %v", v, values)
	}
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "the specified key does not exist", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

type fakeRedis struct {
	lists   map[string][]string
	strings map[string]string
}

func newFakeRedisPool() *redis.Pool {
	server := &fakeRedis{lists: map[string][]string{}, strings: map[string]string{}}
	return &redis.Pool{
		Dial: func() (redis.Conn, error) { return &fakeRedisConn{server: server}, nil },
	}
}

type fakeRedisConn struct {
	server *fakeRedis
	queued [][]interface{}
}

func (c *fakeRedisConn) Close() error { return nil }
func (c *fakeRedisConn) Err() error   { return nil }
func (c *fakeRedisConn) Flush() error { return nil }

func (c *fakeRedisConn) Receive() (interface{}, error) { return nil, nil }

func (c *fakeRedisConn) Send(cmd string, args ...interface{}) error {
	c.queued = append(c.queued, append([]interface{}{cmd}, args...))
	return nil
}

func (c *fakeRedisConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	switch cmd {
	case "":
		return nil, nil
	case "EXEC":
		replies := []interface{}{}
		for _, q := range c.queued {
			if q[0] == "MULTI" {
				continue
			}
			reply, err := c.apply(q[0].(string), q[1:]...)
			if err != nil {
				return nil, err
			}
			replies = append(replies, reply)
		}
		c.queued = nil
		return replies, nil
	default:
		return c.apply(cmd, args...)
	}
}

func (c *fakeRedisConn) apply(cmd string, args ...interface{}) (interface{}, error) {
	key := fmt.Sprint(args[0])

	switch cmd {
	case "DEL":
		delete(c.server.lists, key)
		delete(c.server.strings, key)
		return int64(1), nil
	case "SET":
		c.server.strings[key] = fmt.Sprint(args[1])
		return "OK", nil
	case "EXISTS":
		_, isList := c.server.lists[key]
		_, isString := c.server.strings[key]
		if isList || isString {
			return int64(1), nil
		}
		return int64(0), nil
	case "RPUSH":
		for _, a := range args[1:] {
			c.server.lists[key] = append(c.server.lists[key], fmt.Sprint(a))
		}
		return int64(len(c.server.lists[key])), nil
	case "LRANGE":
		reply := []interface{}{}
		for _, v := range c.server.lists[key] {
			reply = append(reply, []byte(v))
		}
		return reply, nil
	default:
		return nil, fmt.Errorf("unsupported command %s", cmd)
	}
}
