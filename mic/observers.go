package mic

type observer[T any] struct {
	id int
	fn func(T)
}

// observers is a registration-ordered callback list. Callbacks may add or
// remove observers while an emit is in progress; changes apply to the next
// emit.
type observers[T any] struct {
	next int
	list []observer[T]
}

func (o *observers[T]) add(fn func(T)) func() {
	o.next++
	id := o.next
	o.list = append(o.list, observer[T]{id: id, fn: fn})
	return func() { o.remove(id) }
}

func (o *observers[T]) remove(id int) {
	for i, ob := range o.list {
		if ob.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) emit(v T) {
	for _, ob := range o.list {
		ob.fn(v)
	}
}

func (o *observers[T]) clear() { o.list = nil }
