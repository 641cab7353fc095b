package scopecache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/sets"
)

func mkSet(t *testing.T, locations ...string) *sets.SchemaSet {
	t.Helper()
	var schemas []*schema.Schema
	for _, loc := range locations {
		schemas = append(schemas, &schema.Schema{
			Name:              schema.NameFor(loc),
			CanonicalLocation: loc,
			Location:          loc,
		})
	}
	set, err := sets.Build(schemas)
	require.NoError(t, err)
	return set
}

func TestGetBuildsOncePerToken(t *testing.T) {
	var builds atomic.Int32
	set := mkSet(t, "/a.xsd")

	c := New(
		func(string) Token { return "t1" },
		func(string) (*sets.SchemaSet, error) {
			builds.Add(1)
			return set, nil
		},
		nil,
	)

	got1, err := c.Get("mod")
	require.NoError(t, err)
	got2, err := c.Get("mod")
	require.NoError(t, err)

	assert.Same(t, got1, got2, "second Get must return the cached instance")
	assert.Equal(t, int32(1), builds.Load())
}

func TestGetRebuildsOnTokenChange(t *testing.T) {
	var builds atomic.Int32
	token := "t1"

	c := New(
		func(string) Token { return token },
		func(string) (*sets.SchemaSet, error) {
			builds.Add(1)
			return mkSet(t, "/a.xsd"), nil
		},
		nil,
	)

	first, err := c.Get("mod")
	require.NoError(t, err)

	token = "t2"
	second, err := c.Get("mod")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), builds.Load())

	// Stable again under the new token.
	third, err := c.Get("mod")
	require.NoError(t, err)
	assert.Same(t, second, third)
	assert.Equal(t, int32(2), builds.Load())
}

func TestFailedRebuildKeepsLastGoodGeneration(t *testing.T) {
	token := "t1"
	fail := false
	good := mkSet(t, "/a.xsd")

	c := New(
		func(string) Token { return token },
		func(string) (*sets.SchemaSet, error) {
			if fail {
				return nil, errors.New("conflict")
			}
			return good, nil
		},
		nil,
	)

	first, err := c.Get("mod")
	require.NoError(t, err)
	require.Same(t, good, first)

	token = "t2"
	fail = true
	second, err := c.Get("mod")
	require.NoError(t, err, "prior generation stays authoritative")
	assert.Same(t, good, second)
}

func TestFirstBuildFailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	c := New(
		func(string) Token { return "t" },
		func(string) (*sets.SchemaSet, error) { return nil, boom },
		nil,
	)

	_, err := c.Get("mod")
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Cached("mod"))
}

func TestEvict(t *testing.T) {
	var builds atomic.Int32
	c := New(
		func(string) Token { return "t" },
		func(string) (*sets.SchemaSet, error) {
			builds.Add(1)
			return mkSet(t, "/a.xsd"), nil
		},
		nil,
	)

	_, err := c.Get("mod")
	require.NoError(t, err)
	require.True(t, c.Cached("mod"))

	c.Evict("mod")
	assert.False(t, c.Cached("mod"))

	_, err = c.Get("mod")
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestScopesAreIndependent(t *testing.T) {
	var builds atomic.Int32
	c := New(
		func(string) Token { return "t" },
		func(scope string) (*sets.SchemaSet, error) {
			builds.Add(1)
			return mkSet(t, "/"+scope+".xsd"), nil
		},
		nil,
	)

	a, err := c.Get("a")
	require.NoError(t, err)
	b, err := c.Get("b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int32(2), builds.Load())
}

func TestConcurrentGetSingleBuild(t *testing.T) {
	var builds atomic.Int32
	set := mkSet(t, "/a.xsd")
	c := New(
		func(string) Token { return "t" },
		func(string) (*sets.SchemaSet, error) {
			builds.Add(1)
			return set, nil
		},
		nil,
	)

	const readers = 16
	results := make([]*sets.SchemaSet, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			set, err := c.Get("mod")
			assert.NoError(t, err)
			results[i] = set
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "concurrent first access builds once")
	for i := 1; i < readers; i++ {
		assert.Same(t, results[0], results[i])
	}
}
