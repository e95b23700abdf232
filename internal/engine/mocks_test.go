package engine_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockProducer replaces the NLP stage with canned trees.
type MockProducer struct {
	mock.Mock
}

// TagAndChunk implements the engine.TreeProducer interface.
func (m *MockProducer) TagAndChunk(ctx context.Context, message string) (*tree.Node, error) {
	args := m.Called(ctx, message)
	if n := args.Get(0); n != nil {
		return n.(*tree.Node), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

// wednesday is the reference "now" of most tests: Wed 13 Mar 2024, 09:00 UTC.
var wednesday = time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)

func at(t time.Time) MockClock {
	return MockClock{CurrentTime: t}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustTree(t *testing.T, s string) *tree.Node {
	t.Helper()
	n, err := tree.Parse(s)
	require.NoError(t, err)
	return n
}
