package platform

import (
	"context"
	"time"

	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/store"
)

// New opens a loaded Store.
//
//	st, err := bubbly.New("./data", bubbly.WithFormat("yaml"))
//
// The uri argument is adapter-specific (see Init).
func New(uri string, opts ...Option) (*store.Store, error) {
	o := apply(opts)

	ser, err := o.serializer()
	if err != nil {
		return nil, err
	}

	prefs, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	st := store.New(prefs, storeOptions(o, ser))
	if err := st.Load(context.Background()); err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}
	return st, nil
}

func storeOptions(o *options, ser codec.Serializer) store.Options {
	so := store.Options{
		Serializer: ser,
		Logger:     o.logger,
	}
	if d, ok := o.config["debounce"].(time.Duration); ok {
		so.Debounce = d
	}
	if n, ok := o.config["queue_size"].(int); ok {
		so.QueueSize = n
	}
	if n, ok := o.config["event_buffer"].(int); ok {
		so.EventBuffer = n
	}
	if fn, ok := o.config["clock"].(func() time.Time); ok {
		so.Clock = fn
	}
	if fn, ok := o.config["error_handler"].(func(error)); ok {
		so.OnError = fn
	}
	return so
}
