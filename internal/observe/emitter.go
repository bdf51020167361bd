package observe

import "sync"

// Emitter is an in-memory Source. Emit delivers synchronously on the caller's
// goroutine, in subscription order. Handlers and hooks run outside the lock so
// they may subscribe or unsubscribe themselves.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*Listener
	hooks     []*subscribeHook
}

type subscribeHook struct{ fn func(*Listener) }

func NewEmitter() *Emitter { return &Emitter{listeners: make(map[string][]*Listener)} }

func (e *Emitter) Subscribe(name string, h Handler) *Listener {
	l := &Listener{Name: name, handler: h}
	e.mu.Lock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*Listener)
	}
	e.listeners[name] = append(e.listeners[name], l)
	hooks := append([]*subscribeHook(nil), e.hooks...)
	e.mu.Unlock()
	for _, hk := range hooks {
		hk.fn(l)
	}
	return l
}

func (e *Emitter) Unsubscribe(l *Listener) bool {
	if l == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[l.Name]
	for i, cur := range ls {
		if cur != l {
			continue
		}
		copy(ls[i:], ls[i+1:])
		ls[len(ls)-1] = nil
		ls = ls[:len(ls)-1]
		if len(ls) == 0 {
			delete(e.listeners, l.Name)
		} else {
			e.listeners[l.Name] = ls
		}
		return true
	}
	return false
}

func (e *Emitter) OnSubscribe(fn func(*Listener)) func() {
	hk := &subscribeHook{fn: fn}
	e.mu.Lock()
	e.hooks = append(e.hooks, hk)
	e.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, cur := range e.hooks {
				if cur == hk {
					e.hooks = append(e.hooks[:i], e.hooks[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers ev to every listener subscribed to name and returns how many
// handlers ran.
func (e *Emitter) Emit(name string, ev Event) int {
	e.mu.Lock()
	ls := append([]*Listener(nil), e.listeners[name]...)
	e.mu.Unlock()
	for _, l := range ls {
		if l.handler != nil {
			l.handler(ev)
		}
	}
	return len(ls)
}

// Len returns the number of live subscriptions across all event names.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ls := range e.listeners {
		n += len(ls)
	}
	return n
}

// Hooks returns the number of registered OnSubscribe hooks.
func (e *Emitter) Hooks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.hooks)
}
