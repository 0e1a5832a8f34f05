package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Summary{}, Describe(""))
	})

	t.Run("desktop firefox", func(t *testing.T) {
		s := Describe("Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
		assert.Equal(t, "Firefox", s.Browser)
		assert.False(t, s.Mobile)
		assert.False(t, s.Bot)
	})

	t.Run("crawler", func(t *testing.T) {
		s := Describe("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, s.Bot)
	})
}
