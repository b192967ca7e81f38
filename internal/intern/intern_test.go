package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntern_SameStringReturnsSameKey(t *testing.T) {
	n := New()
	a := n.Intern("user::User::new")
	b := n.Intern("user::User::new")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, n.Len())
}

func TestIntern_DistinctStringsGetDistinctKeys(t *testing.T) {
	n := New()
	a := n.Intern("foo")
	b := n.Intern("bar")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, n.Len())
}

func TestString_RoundTrips(t *testing.T) {
	n := New()
	k := n.Intern("user::User::new")
	assert.Equal(t, "user::User::new", n.String(k))
}

func TestString_UnknownKeyReturnsEmpty(t *testing.T) {
	n := New()
	assert.Equal(t, "", n.String(Key(99)))
}
