package cache

import (
	"context"
	"encoding/json"
	"time"
)

// directoryTTL bounds how stale the public-company directory may be. The
// listing has no per-write invalidation hook, so a short TTL is the only
// staleness bound.
const directoryTTL = 30 * time.Second

const publicCompaniesKey = "directory:public_companies"

// GetPublicCompanies unmarshals a cached directory listing into dst, the
// way a cache-aside read does. Returns found=false on a miss.
func (c *Cache) GetPublicCompanies(ctx context.Context, dst any) (bool, error) {
	data, err := c.Get(ctx, publicCompaniesKey)
	if err != nil || data == nil {
		return false, err
	}
	return true, json.Unmarshal(data, dst)
}

func (c *Cache) SetPublicCompanies(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, publicCompaniesKey, data, directoryTTL)
}
