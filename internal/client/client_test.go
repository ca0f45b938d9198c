package client

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/go-test/deep"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/wordgate/wordgate/internal/core"
	"github.com/wordgate/wordgate/internal/server"
	"github.com/wordgate/wordgate/internal/wordstore"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig(addr net.Addr, pageSize, startOffset int) *core.Config {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		panic(err)
	}
	cfg := &core.Config{ServerIP: host}
	fmt.Sscanf(port, "%d", &cfg.ServerPort)
	cfg.Client.PageSize = pageSize
	cfg.Client.StartOffset = startOffset
	return cfg
}

// startServer runs a real Server over the given words for end-to-end client
// tests.
func startServer(t *testing.T, words []string) net.Addr {
	t.Helper()

	socket, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := server.New(&core.Config{}, wordstore.New(words), testLogger())
	go func() {
		_ = srv.Serve(ctx, socket)
	}()
	return socket.Addr()
}

func fetch(t *testing.T, cfg *core.Config) ([]string, error) {
	t.Helper()

	c := New(cfg, testLogger())
	require.NoError(t, c.Connect(context.Background()))
	defer func() { _ = c.Close() }()

	return c.Fetch(context.Background())
}

// Driving the loop from offset 0 must reconstruct the store exactly, in
// order, for any page size.
func TestFetchReconstructsStore(t *testing.T) {
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog"}
	addr := startServer(t, words)

	for _, pageSize := range []int{1, 2, 3, 4, 8, 9, 100} {
		t.Run(fmt.Sprintf("pageSize=%d", pageSize), func(t *testing.T) {
			got, err := fetch(t, testConfig(addr, pageSize, 0))
			require.NoError(t, err)
			if diff := deep.Equal(words, got); diff != nil {
				t.Error("fetched words mismatch:", diff)
			}
		})
	}
}

func TestFetchConcreteScenario(t *testing.T) {
	addr := startServer(t, []string{"a", "b", "c", "d", "e"})

	got, err := fetch(t, testConfig(addr, 2, 0))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestFetchFromNonZeroOffset(t *testing.T) {
	addr := startServer(t, []string{"a", "b", "c", "d", "e"})

	got, err := fetch(t, testConfig(addr, 2, 3))
	require.NoError(t, err)
	require.Equal(t, []string{"d", "e"}, got)
}

func TestFetchEmptyStore(t *testing.T) {
	addr := startServer(t, nil)

	got, err := fetch(t, testConfig(addr, 4, 0))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFetchStoreWithEmptyWords(t *testing.T) {
	// Empty words survive the round trip mid-page. The one exception is an
	// empty word standing immediately before the end marker: the client
	// strips one trailing delimiter from the marker prefix, so that word is
	// lost. Both sides inherit this from the protocol's defined decode rules.
	addr := startServer(t, []string{"a", "", "b", ""})

	got, err := fetch(t, testConfig(addr, 3, 0))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "", "b"}, got)
}

// A connection dropped mid-download is unexpected termination: Fetch returns
// what it has along with an error, and never retries.
func TestFetchAbortsOnConnectionDrop(t *testing.T) {
	socket, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = socket.Close() })

	go func() {
		conn, err := socket.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 64)
		// Serve exactly one page, then hang up.
		if _, err := conn.Read(buf); err == nil {
			_, _ = conn.Write([]byte("a,b\n"))
		}
		_ = conn.Close()
	}()

	got, err := fetch(t, testConfig(socket.Addr(), 2, 0))
	require.Error(t, err)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestFetchWithoutConnect(t *testing.T) {
	c := New(testConfig(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, 2, 0), testLogger())
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
}
