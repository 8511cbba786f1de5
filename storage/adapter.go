package storage

import (
	"context"
	"errors"

	"github.com/jonwraymond/mediaquery/observe"
)

// Adapter stores encoded values in a RawStore.
//
// Load never fails: a missing key, an unreadable backend or an undecodable
// token all report absent. Read and decode failures are logged.
type Adapter struct {
	raw    RawStore
	codec  Codec
	logger observe.Logger
}

// NewAdapter joins a store and a codec. A nil codec selects the default
// ObfuscatingCodec and a nil logger discards log output.
func NewAdapter(raw RawStore, codec Codec, logger observe.Logger) *Adapter {
	if codec == nil {
		codec = NewObfuscatingCodec("")
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Adapter{raw: raw, codec: codec, logger: logger}
}

// Save encodes v and writes it under key, replacing any previous value.
func (a *Adapter) Save(ctx context.Context, key string, v any) error {
	token, err := a.codec.Encode(v)
	if err != nil {
		return err
	}
	return a.raw.WriteRaw(ctx, key, token)
}

// Load decodes the value stored under key into v and reports whether it did.
func (a *Adapter) Load(ctx context.Context, key string, v any) bool {
	token, err := a.raw.ReadRaw(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn(ctx, "storage read failed", observe.F("key", key), observe.F("error", err))
		}
		return false
	}

	if err := a.codec.Decode(token, v); err != nil {
		a.logger.Warn(ctx, "storage decode failed", observe.F("key", key), observe.F("error", err))
		return false
	}
	return true
}

// Delete removes key. Deleting a missing key is not an error.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	return a.raw.DeleteRaw(ctx, key)
}

// Raw returns the underlying store.
func (a *Adapter) Raw() RawStore { return a.raw }
