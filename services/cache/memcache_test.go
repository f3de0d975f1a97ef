package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	key := Key("boxoffice", "url", "Jawan", "2023")

	err := mc.Set(key, []byte("https://www.sacnilk.com/movie/Jawan_2023"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, "https://www.sacnilk.com/movie/Jawan_2023", string(value))

	err = mc.Delete(key)
	assert.NoError(t, err)

	_, err = mc.Get(key)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "boxoffice:url:Kisi_Ka_Bhai:2023", Key("boxoffice", "url", "Kisi Ka Bhai", "2023"))

	long := Key("boxoffice", strings.Repeat("x", 300))
	assert.LessOrEqual(t, len(long), 250)
	assert.True(t, strings.HasPrefix(long, "boxoffice:"))
	assert.Equal(t, long, Key("boxoffice", strings.Repeat("x", 300)))
}
