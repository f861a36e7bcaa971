package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/notify"
)

// Disposable is anything a view model can own as a child.
type Disposable interface {
	Dispose()
}

// Node is the type-erased view of a view model.
// Every type embedding Base implements it.
type Node interface {
	Disposable
	ID() uint64
	IsDisposed() bool
	ItemValue() any
	TypeName() string
}

// Parent is implemented by every type embedding Base. It is the handle the
// child registration functions operate on.
type Parent interface {
	base() *core
}

// core holds the item-independent state of a view model.
type core struct {
	id       uint64
	self     Node
	typeName string
	env      *Env
	logger   *slog.Logger

	// events is the view model's own property changed signal.
	events notify.Emitter

	// source and listener are the item subscription, nil when the item is not
	// a notify.Source.
	source   notify.Source
	listener *itemListener

	// extras are secondary sources keyed by identity.
	extras map[notify.Source]*extraConnection

	// children are registered child view models in registration order.
	children []childEntry

	disposed    atomic.Bool
	initialized bool
}

func (c *core) base() *core { return c }

// Base is embedded by concrete view models observing an item of type T.
type Base[T any] struct {
	core
	item T
}

// Init binds the view model. self must be the value embedding b, item is the
// observed domain object (not owned), env may be nil.
// Init panics when called twice or with a foreign self.
func (b *Base[T]) Init(self Parent, item T, env *Env) {
	c := &b.core
	if c.initialized {
		panic(vmerrors.New("E004").WithDetailf("Init called twice on %T", self))
	}
	if self == nil || self.base() != c {
		panic(vmerrors.New("E004").WithDetailf("%T does not embed this Base", self))
	}
	node, ok := self.(Node)
	if !ok {
		panic(vmerrors.New("E004").WithDetailf("%T does not implement Node", self))
	}

	b.item = item
	c.initialized = true
	c.id = notify.NextID()
	c.self = node
	c.typeName = reflect.TypeOf(self).String()
	c.env = env
	c.logger = env.logger().With("viewmodel", c.typeName, "id", c.id)

	if src, ok := asSource(item); ok {
		c.source = src
		c.listener = &itemListener{c: c, id: notify.NextID()}
		src.Subscribe(c.listener)
	}

	if obs := env.observer(); obs != nil {
		obs.NodeCreated(node)
	}
}

// Item returns the observed domain object.
func (b *Base[T]) Item() T {
	return b.item
}

// ItemValue returns the observed domain object as any.
func (b *Base[T]) ItemValue() any {
	return b.item
}

// ID returns the unique identifier of this view model.
func (c *core) ID() uint64 {
	return c.id
}

// TypeName returns the concrete type name, e.g. "*demo.ParentVM".
func (c *core) TypeName() string {
	return c.typeName
}

// IsDisposed reports whether Dispose has been called.
// Safe to call from any goroutine.
func (c *core) IsDisposed() bool {
	return c.disposed.Load()
}

// Env returns the environment passed to Init.
// Child constructors use it to join the parent's graph.
func (c *core) Env() *Env {
	return c.env
}

// Subscribe adds a listener to the view model's own property changed signal.
func (c *core) Subscribe(l notify.Listener) {
	c.events.Subscribe(l)
}

// Unsubscribe removes a listener added with Subscribe.
func (c *core) Unsubscribe(l notify.Listener) {
	c.events.Unsubscribe(l)
}

// Dispose releases the item subscription and every extra connection, then
// disposes all children. A second call is a no-op. Child panics are logged and
// do not stop the remaining children from being disposed.
func (c *core) Dispose() {
	if c.disposed.Swap(true) {
		return
	}

	if c.source != nil {
		c.source.Unsubscribe(c.listener)
	}
	for src, conn := range c.extras {
		src.Unsubscribe(conn)
	}
	c.extras = nil

	// Dispose children in reverse order
	children := c.children
	c.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		c.disposeChild(children[i])
	}

	if obs := c.env.observer(); obs != nil && c.self != nil {
		obs.NodeDisposed(c.self)
	}
}

// NotifyProperty disposes the children registered under property and then
// announces property on the view model's signal. It returns the first listener
// error.
func (c *core) NotifyProperty(property string) error {
	if c.disposed.Load() {
		return c.disposedError("NotifyProperty " + property)
	}
	c.DisposeChildren(property)
	return c.events.Raise(property)
}

// NotifyProperties calls NotifyProperty for each name in order and stops at
// the first error.
func (c *core) NotifyProperties(properties ...string) error {
	for _, p := range properties {
		if err := c.NotifyProperty(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *core) log() *slog.Logger {
	if c.logger == nil {
		return c.env.logger()
	}
	return c.logger
}

// onItemChanged dispatches an item change through the type's store and the
// optional hook.
func (c *core) onItemChanged(property string) (err error) {
	if c.disposed.Load() {
		return c.disposedError("item change " + property)
	}

	_, span := c.env.tracer().Start(context.Background(), "viewmodel.ItemPropertyChanged",
		trace.WithAttributes(
			attribute.String("viewmodel.type", c.typeName),
			attribute.String("viewmodel.property", property),
		))
	defer func() { endSpan(span, err) }()

	if err = StoreFor(c.self).notify(c, property); err != nil {
		return err
	}
	if h, ok := c.self.(ItemChangedHandler); ok {
		err = h.OnItemPropertyChanged(property)
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// itemListener is the node's subscription on its item.
type itemListener struct {
	c  *core
	id uint64
}

func (l *itemListener) ID() uint64 { return l.id }

func (l *itemListener) PropertyChanged(property string) error {
	return l.c.onItemChanged(property)
}

// asSource returns item as a notify.Source, treating nil pointers as absent.
func asSource(item any) (notify.Source, bool) {
	src, ok := item.(notify.Source)
	if !ok {
		return nil, false
	}
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, false
		}
	}
	return src, true
}

func (c *core) disposeChild(e childEntry) {
	defer func() {
		if r := recover(); r != nil {
			c.log().Error("child dispose failed",
				"property", e.property,
				"child", fmt.Sprintf("%T", e.child),
				"panic", r)
		}
	}()
	e.child.Dispose()
}
