package netlock_test

import (
	"bufio"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/netlock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, authKey string) *netlock.Server {
	t.Helper()
	srv := netlock.NewServer(authKey, zerolog.Nop())
	require.NoError(t, srv.Open("127.0.0.1:0"))
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestClient_AcquireRelease(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")
	client := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)

	require.NoError(t, client.Acquire(context.Background()))
	require.NoError(t, client.Release())

	// The lock is reusable after release.
	require.NoError(t, client.Acquire(context.Background()))
	require.NoError(t, client.Release())
}

func TestClient_MutualExclusion(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")
	first := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	second := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)

	require.NoError(t, first.Acquire(context.Background()))

	granted := make(chan error, 1)
	go func() {
		granted <- second.Acquire(context.Background())
	}()

	select {
	case err := <-granted:
		t.Fatalf("second acquire granted while first held: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, first.Release())

	select {
	case err := <-granted:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire never granted after release")
	}
	require.NoError(t, second.Release())
}

func TestServer_ReleasesOnDisconnect(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")

	// Acquire over a raw connection, then drop it without releasing.
	conn := rawAcquire(t, srv.Addr(), "secret", netlock.FrontierLock)
	conn.Close()

	client := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Acquire(ctx), "lock should free when its holder disconnects")
	require.NoError(t, client.Release())
}

func TestServer_PipelinedWaiterDropFreesLock(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")
	holder := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	require.NoError(t, holder.Acquire(context.Background()))

	// A waiter that pipelines a second command while blocked on the grant,
	// then drops without releasing anything.
	conn, _ := rawHandshake(t, srv.Addr(), "secret")
	fmt.Fprintf(conn, "ACQUIRE %s\nACQUIRE extra\n", netlock.FrontierLock)
	time.Sleep(50 * time.Millisecond)
	conn.Close()

	require.NoError(t, holder.Release())

	next := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, next.Acquire(ctx), "dropped waiter must not tie up the lock")
	require.NoError(t, next.Release())
}

func TestClient_WrongAuthKey(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")
	client := netlock.NewClient(srv.Addr(), "wrong", netlock.FrontierLock)

	err := client.Acquire(context.Background())
	require.Error(t, err)
	assert.Equal(t, ossearch.EINVALID, ossearch.ErrorCode(err))
}

func TestClient_AcquireCancelled(t *testing.T) {
	t.Parallel()

	srv := newServer(t, "secret")
	holder := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	require.NoError(t, holder.Acquire(context.Background()))
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	waiter := netlock.NewClient(srv.Addr(), "secret", netlock.FrontierLock)
	err := waiter.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ReleaseNotHeld(t *testing.T) {
	t.Parallel()

	client := netlock.NewClient("127.0.0.1:1", "secret", netlock.FrontierLock)

	err := client.Release()
	require.Error(t, err)
	assert.Equal(t, ossearch.ECONFLICT, ossearch.ErrorCode(err))
}

func TestLocal(t *testing.T) {
	t.Parallel()

	lock := netlock.NewLocal()

	require.NoError(t, lock.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, lock.Acquire(ctx), context.DeadlineExceeded)

	require.NoError(t, lock.Release())
	assert.Error(t, lock.Release(), "double release reports not held")
}

// rawHandshake speaks the authentication handshake directly so tests can
// drive the wire protocol by hand.
func rawHandshake(t *testing.T, addr, authKey string) (net.Conn, *bufio.Reader) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	challenge, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte(authKey))
	mac.Write(challenge)
	fmt.Fprintf(conn, "%s\n", hex.EncodeToString(mac.Sum(nil)))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "OK", strings.TrimSpace(line))

	return conn, reader
}

// rawAcquire acquires over a raw connection so the test can drop it
// without a polite release.
func rawAcquire(t *testing.T, addr, authKey, name string) net.Conn {
	t.Helper()

	conn, reader := rawHandshake(t, addr, authKey)

	fmt.Fprintf(conn, "ACQUIRE %s\n", name)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "GRANTED"), "unexpected reply %q", line)

	return conn
}
