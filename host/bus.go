package host

import (
	"fmt"
	"sort"
	"sync"

	"chestshop/define"
)

type eventCallBack struct {
	cbs   map[int]func(ev define.Event)
	count int
}

// Bus delivers events to the callbacks registered for their kind, one event at a
// time, in registration order.
type Bus struct {
	dispatchMu sync.Mutex
	mu         sync.Mutex
	cbs        map[define.EventKind]*eventCallBack
}

func NewBus() *Bus {
	bus := &Bus{cbs: make(map[define.EventKind]*eventCallBack)}
	for _, kind := range []define.EventKind{
		define.EventSignChange, define.EventInteract, define.EventBlockBreak, define.EventCommand,
	} {
		bus.cbs[kind] = &eventCallBack{cbs: make(map[int]func(ev define.Event))}
	}
	return bus
}

func (b *Bus) AddEventCallback(kind define.EventKind, cb func(ev define.Event)) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	eventCBS, ok := b.cbs[kind]
	if !ok {
		return 0, fmt.Errorf("do not have such event kind (%v) for call back", kind)
	}
	c := eventCBS.count + 1
	_, hasK := eventCBS.cbs[c]
	for hasK {
		c += 1
		_, hasK = eventCBS.cbs[c]
	}
	eventCBS.count = c
	eventCBS.cbs[c] = cb
	return c, nil
}

func (b *Bus) RemoveEventCallback(kind define.EventKind, cbID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	eventCBS, ok := b.cbs[kind]
	if !ok {
		return false
	}
	if _, ok := eventCBS.cbs[cbID]; !ok {
		return false
	}
	delete(eventCBS.cbs, cbID)
	return true
}

// Dispatch runs the callbacks of ev's kind synchronously on the calling goroutine.
// Events are never delivered concurrently.
func (b *Bus) Dispatch(ev define.Event) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	b.mu.Lock()
	eventCBS, ok := b.cbs[ev.Kind()]
	if !ok {
		b.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(eventCBS.cbs))
	for id := range eventCBS.cbs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	cbs := make([]func(ev define.Event), 0, len(ids))
	for _, id := range ids {
		cbs = append(cbs, eventCBS.cbs[id])
	}
	b.mu.Unlock()
	for _, cb := range cbs {
		cb(ev)
	}
}
