package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBasics(t *testing.T) {
	s := New("b", "a")
	s.Add("c", "a")
	assert.True(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Sorted())

	c := s.Clone()
	c.Delete("a")
	assert.True(t, s.Has("a"))
	assert.False(t, c.Has("a"))

	u := New[string]()
	u.Union(c)
	u.Union(New("z"))
	assert.Equal(t, []string{"b", "c", "z"}, u.Sorted())
}
