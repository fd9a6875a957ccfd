package ftxengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHttpParamsStringJoinsPairs(t *testing.T) {
	p := NewHttpParams(nil)
	p.Add("a", "1")
	s := p.String()
	assert.Equal(t, "a=1", s)
}

func TestHttpParamsAddOverwrites(t *testing.T) {
	p := NewHttpParams(map[string]string{"a": "1"})
	p.Add("a", "2")
	assert.Equal(t, "a=2", p.String())
}

func TestHttpParamsDoesNotEncode(t *testing.T) {
	p := NewHttpParams(nil)
	p.Add("q", "a b&c")
	assert.Equal(t, "q=a b&c", p.String())
}

func TestHttpParamsMultiplePairsAllPresent(t *testing.T) {
	p := NewHttpParams(map[string]string{"a": "1", "b": "2", "c": "3"})
	s := p.String()
	for _, want := range []string{"a=1", "b=2", "c=3"} {
		assert.True(t, strings.Contains(s, want), "missing %q in %q", want, s)
	}
	assert.Equal(t, 2, strings.Count(s, "&"))
}
