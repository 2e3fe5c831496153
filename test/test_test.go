package test_test

import (
	"testing"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/test"
)

func TestMemoryBackend(t *testing.T) {
	test.Backend(t, assetcache.NewMemoryBackend())
}
