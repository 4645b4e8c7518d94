package requestlog

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LogAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStore(10)

	e := &Entry{Method: "GET", Path: "/api/users"}
	s.Log(e)
	s.Log(nil)

	assert.Equal(t, "req-1", e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, 1, s.Count())
	assert.Same(t, e, s.Get("req-1"))
	assert.Nil(t, s.Get("req-404"))

	kept := &Entry{ID: "custom"}
	s.Log(kept)
	assert.Same(t, kept, s.Get("custom"))
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	s := NewMemoryStore(3)
	for i := 1; i <= 5; i++ {
		s.Log(&Entry{Path: fmt.Sprintf("/api/posts/%d", i)})
	}

	require.Equal(t, 3, s.Count())
	paths := []string{}
	for _, e := range s.List(nil) {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/api/posts/5", "/api/posts/4", "/api/posts/3"}, paths)
	assert.Nil(t, s.Get("req-1"))
}

func TestMemoryStore_ListFilter(t *testing.T) {
	s := NewMemoryStore(0)
	s.Log(&Entry{Method: "GET", Path: "/api/users", ResponseStatus: 200})
	s.Log(&Entry{Method: "POST", Path: "/api/carts", ResponseStatus: 400})
	s.Log(&Entry{Method: "POST", Path: "/api/carts", ResponseStatus: 201})
	s.Log(&Entry{Method: "GET", Path: "/api/users/9", ResponseStatus: 404})

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{"all", nil, []string{"req-4", "req-3", "req-2", "req-1"}},
		{"method is case-insensitive", &Filter{Method: "post"}, []string{"req-3", "req-2"}},
		{"path prefix", &Filter{Path: "/api/users"}, []string{"req-4", "req-1"}},
		{"status", &Filter{StatusCode: 400}, []string{"req-2"}},
		{"limit", &Filter{Limit: 2}, []string{"req-4", "req-3"}},
		{"offset", &Filter{Offset: 3}, []string{"req-1"}},
		{"offset past end", &Filter{Offset: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, e := range s.List(tt.filter) {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore(5)
	s.Log(&Entry{})
	s.Log(&Entry{})

	assert.Equal(t, 2, s.Clear())
	assert.Zero(t, s.Count())

	e := &Entry{}
	s.Log(e)
	assert.Equal(t, "req-3", e.ID)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(50)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				s.Log(&Entry{Method: "GET"})
				_ = s.List(&Filter{Limit: 5})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	seen := map[string]bool{}
	for _, e := range s.List(nil) {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0", shortID(0))
	assert.Equal(t, "z", shortID(35))
	assert.Equal(t, "10", shortID(36))
}

func TestTruncateBody(t *testing.T) {
	assert.Equal(t, "short", TruncateBody("short", 10))
	assert.Equal(t, "abc...(truncated)", TruncateBody("abcdef", 3))

	long := strings.Repeat("x", MaxBodySize+1)
	assert.Equal(t, MaxBodySize+len("...(truncated)"), len(TruncateBody(long, 0)))
}
