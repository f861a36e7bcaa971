package viewmodel

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/notify"
)

// extraConnection is the node's subscription on a secondary source.
type extraConnection struct {
	c   *core
	key string
	id  uint64
}

func (x *extraConnection) ID() uint64 { return x.id }

func (x *extraConnection) PropertyChanged(property string) error {
	return x.c.onExtraChanged(property, x.key)
}

// CreateExtraConnection observes source under key. Changes are routed to the
// handlers and dependents declared for key. A source may be connected only once
// per view model.
func (c *core) CreateExtraConnection(source notify.Source, key string) error {
	if c.disposed.Load() {
		return c.disposedError("CreateExtraConnection " + key)
	}
	if source == nil {
		return vmerrors.New("E006").WithDetail("nil source").Wrap(ErrUncomparableSource)
	}
	if t := reflect.TypeOf(source); !t.Comparable() {
		return vmerrors.New("E006").WithDetailf("%s is not comparable", t).Wrap(ErrUncomparableSource)
	}
	if existing, ok := c.extras[source]; ok {
		return vmerrors.New("E002").
			WithDetailf("%T already connected to %s as %q", source, c.typeName, existing.key).
			Wrap(ErrDuplicateConnection)
	}

	if c.extras == nil {
		c.extras = make(map[notify.Source]*extraConnection)
	}
	conn := &extraConnection{c: c, key: key, id: notify.NextID()}
	c.extras[source] = conn
	source.Subscribe(conn)

	c.log().Debug("extra connection created", "key", key, "source", reflect.TypeOf(source).String())
	return nil
}

// RemoveExtraConnection stops observing source. It reports whether source was
// connected.
func (c *core) RemoveExtraConnection(source notify.Source) bool {
	if source == nil || !reflect.TypeOf(source).Comparable() {
		return false
	}
	conn, ok := c.extras[source]
	if !ok {
		return false
	}
	delete(c.extras, source)
	source.Unsubscribe(conn)
	c.log().Debug("extra connection removed", "key", conn.key)
	return true
}

// ExtraConnectionCount returns the number of live extra connections.
func (c *core) ExtraConnectionCount() int {
	return len(c.extras)
}

func (c *core) onExtraChanged(property, key string) (err error) {
	if c.disposed.Load() {
		return c.disposedError("extra change " + key + "." + property)
	}

	_, span := c.env.tracer().Start(context.Background(), "viewmodel.ExtraPropertyChanged",
		trace.WithAttributes(
			attribute.String("viewmodel.type", c.typeName),
			attribute.String("viewmodel.property", property),
			attribute.String("viewmodel.key", key),
		))
	defer func() { endSpan(span, err) }()

	if err = StoreFor(c.self).notifyExtra(c, property, key); err != nil {
		return err
	}
	if h, ok := c.self.(ExtraChangedHandler); ok {
		err = h.OnExtraPropertyChanged(property, key)
	}
	return err
}
