package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel...", Truncate("hello world", 3))
	assert.Equal(t, "", Truncate("", 4))
}

func TestTruncateRuneBoundary(t *testing.T) {
	// Never cuts through a multi-byte sequence.
	got := Truncate("héllo", 2)
	assert.Equal(t, "h...", got)

	got = Truncate("日本語テキスト", 7)
	assert.Equal(t, "日本...", got)
}
