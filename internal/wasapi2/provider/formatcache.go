package provider

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

var formatsBucket = []byte("endpoint-formats")

// FormatCache persists an endpoint's probed format set across process
// restarts, keyed by endpoint id, so RbufCtx.Open doesn't have to
// re-probe the exclusive-mode grid against hardware that hasn't
// changed since the last run. An entry stays until Invalidate is called
// for its endpoint; enumerator "updated" signals do not invalidate it.
type FormatCache struct {
	db *bolt.DB
}

// OpenFormatCache opens (creating if absent) a bbolt database at path.
func OpenFormatCache(path string) (*FormatCache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "provider: open format cache")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(formatsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "provider: init format cache bucket")
	}
	return &FormatCache{db: db}, nil
}

func (c *FormatCache) Close() error {
	return c.db.Close()
}

// Get returns the cached format set for endpointID, or ok=false on a
// cache miss.
func (c *FormatCache) Get(endpointID string) (formats []waveformat.Format, ok bool, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(formatsBucket).Get([]byte(endpointID))
		if raw == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(raw))
		if decErr := dec.Decode(&formats); decErr != nil {
			return decErr
		}
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "provider: read format cache")
	}
	return formats, ok, nil
}

// Put stores the probed format set for endpointID.
func (c *FormatCache) Put(endpointID string, formats []waveformat.Format) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(formats); err != nil {
		return errors.Wrap(err, "provider: encode format cache entry")
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(formatsBucket).Put([]byte(endpointID), buf.Bytes())
	})
	return errors.Wrap(err, "provider: write format cache")
}

// Invalidate drops the cached entry for endpointID. Nothing in this
// module calls it when the enumerator reports a device change.
func (c *FormatCache) Invalidate(endpointID string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(formatsBucket).Delete([]byte(endpointID))
	})
	return errors.Wrap(err, "provider: invalidate format cache entry")
}
