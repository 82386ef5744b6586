package redis

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// mockRedisServer speaks enough RESP for GET, INCR and EXPIRE.
type mockRedisServer struct {
	listener net.Listener
	mu       sync.Mutex
	values   map[string]int
	ttls     map[string]string
	wg       sync.WaitGroup
}

func newMockRedisServer(t *testing.T) *mockRedisServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &mockRedisServer{listener: l, values: map[string]int{}, ttls: map[string]string{}}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		l.Close()
		s.wg.Wait()
	})
	return s
}

func (s *mockRedisServer) addr() string {
	return s.listener.Addr().String()
}

func (s *mockRedisServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *mockRedisServer) handle(c net.Conn) {
	defer c.Close()
	reader := bufio.NewReader(c)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") {
			continue
		}
		var numArgs int
		fmt.Sscanf(line, "*%d", &numArgs)
		args := make([]string, 0, numArgs)
		for i := 0; i < numArgs; i++ {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
			val, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			args = append(args, strings.TrimSpace(val))
		}
		if len(args) == 0 {
			continue
		}
		c.Write([]byte(s.reply(args)))
	}
}

func (s *mockRedisServer) reply(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch strings.ToUpper(args[0]) {
	case "HELLO":
		return "%1\r\n$7\r\nversion\r\n$5\r\n7.0.0\r\n"
	case "PING":
		return "+PONG\r\n"
	case "GET":
		v, ok := s.values[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		str := strconv.Itoa(v)
		return fmt.Sprintf("$%d\r\n%s\r\n", len(str), str)
	case "INCR":
		s.values[args[1]]++
		return fmt.Sprintf(":%d\r\n", s.values[args[1]])
	case "EXPIRE":
		s.ttls[args[1]] = args[2]
		return ":1\r\n"
	default:
		return "+OK\r\n"
	}
}

func newTestGate(t *testing.T, limit int) (*QuotaGate, *mockRedisServer) {
	t.Helper()
	server := newMockRedisServer(t)
	gate, err := NewQuotaGate(context.Background(), Options{URL: server.addr(), DailyLimit: limit})
	require.NoError(t, err)
	t.Cleanup(func() { gate.Close() })
	gate.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	return gate, server
}

func TestQuotaGate_CountsAndLimits(t *testing.T) {
	gate, server := newTestGate(t, 2)
	ctx := context.Background()

	require.NoError(t, gate.Check(ctx, "alice"))
	require.NoError(t, gate.Increment(ctx, "alice"))
	require.NoError(t, gate.Increment(ctx, "alice"))

	assert.ErrorIs(t, gate.Check(ctx, "alice"), domain.ErrQuotaExceeded)
	assert.NoError(t, gate.Check(ctx, "bob"))

	key := DefaultKeyPrefix + "2026-05-04:alice"
	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Equal(t, 2, server.values[key])
	assert.Equal(t, strconv.Itoa(int(keyTTL.Seconds())), server.ttls[key])
}

func TestQuotaGate_ZeroLimitDisables(t *testing.T) {
	gate, _ := newTestGate(t, 0)
	ctx := context.Background()

	require.NoError(t, gate.Increment(ctx, "alice"))
	assert.NoError(t, gate.Check(ctx, "alice"))
}

func TestClientOptions(t *testing.T) {
	opts, err := clientOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, opts.Addr)

	opts, err = clientOptions("cache.internal:6380")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)

	opts, err = clientOptions("redis://:secret@cache.internal:6379/3")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = clientOptions("redis://cache.internal:6379/notadb")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewQuotaGate_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = NewQuotaGate(ctx, Options{URL: addr})
	assert.Error(t, err)
}
