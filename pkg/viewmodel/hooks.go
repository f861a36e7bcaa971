package viewmodel

// Declarer is implemented by view models that declare dependencies.
// DeclareDependencies is called once per concrete type, on whichever instance
// first handles a change, and must not depend on instance state.
type Declarer interface {
	DeclareDependencies(t *Table)
}

// ItemChangedHandler is implemented by view models that want every item
// change after the declared handlers ran.
type ItemChangedHandler interface {
	OnItemPropertyChanged(property string) error
}

// ExtraChangedHandler is implemented by view models that want every extra
// connection change after the declared handlers ran.
type ExtraChangedHandler interface {
	OnExtraPropertyChanged(property, key string) error
}
