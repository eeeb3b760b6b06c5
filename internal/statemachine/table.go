// internal/statemachine/table.go
package statemachine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Status 是状态机中的一个状态
type Status string

// Event 是触发状态转换的命名事件
type Event string

// Hook 是挂在单条转换上的副作用钩子，在新快照持久化之后执行
type Hook[T any] func(ctx context.Context, snapshot T) error

// Transition 声明一条允许的转换：(From, Event) -> To
type Transition[T any] struct {
	From  Status
	Event Event
	To    Status
	Hook  Hook[T]
}

type transitionKey struct {
	from  Status
	event Event
}

// Table 是某个命名状态机的静态转换表。
// 名称用于划分快照存储与缓存的 key 空间，多种实体类型可共用一套引擎实现。
type Table[T any] struct {
	name     string
	initial  Status
	entries  map[transitionKey]Transition[T]
	terminal map[Status]bool
}

// NewTable 构建转换表并做静态校验。
// 校验规则：从初始状态可达的每个状态都必须有出边，除非被声明为终态。
func NewTable[T any](name string, initial Status, transitions []Transition[T], terminal ...Status) (*Table[T], error) {
	if name == "" {
		return nil, errors.New("statemachine: table name must not be empty")
	}

	t := &Table[T]{
		name:     name,
		initial:  initial,
		entries:  make(map[transitionKey]Transition[T], len(transitions)),
		terminal: make(map[Status]bool, len(terminal)),
	}
	for _, s := range terminal {
		t.terminal[s] = true
	}
	for _, tr := range transitions {
		key := transitionKey{from: tr.From, event: tr.Event}
		if _, dup := t.entries[key]; dup {
			return nil, errors.Errorf("statemachine %q: duplicate transition (%s, %s)", name, tr.From, tr.Event)
		}
		t.entries[key] = tr
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate 从初始状态做可达性遍历，检查非终态不允许是死胡同
func (t *Table[T]) validate() error {
	reachable := map[Status]bool{t.initial: true}
	queue := []Status{t.initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for key, tr := range t.entries {
			if key.from != cur || reachable[tr.To] {
				continue
			}
			reachable[tr.To] = true
			queue = append(queue, tr.To)
		}
	}

	for s := range reachable {
		if t.terminal[s] {
			continue
		}
		if !t.hasOutgoing(s) {
			return errors.Errorf("statemachine %q: state %s is reachable but has no outgoing transition and is not terminal", t.name, s)
		}
	}
	return nil
}

func (t *Table[T]) hasOutgoing(s Status) bool {
	for key := range t.entries {
		if key.from == s {
			return true
		}
	}
	return false
}

// Name 返回状态机名称
func (t *Table[T]) Name() string { return t.name }

// Initial 返回声明的初始状态
func (t *Table[T]) Initial() Status { return t.initial }

// IsTerminal 判断状态是否为终态
func (t *Table[T]) IsTerminal(s Status) bool { return t.terminal[s] }

// Next 查找 (current, event) 对应的转换条目，不存在则返回 ErrInvalidTransition
func (t *Table[T]) Next(current Status, event Event) (Transition[T], error) {
	tr, ok := t.entries[transitionKey{from: current, event: event}]
	if !ok {
		return Transition[T]{}, errors.Wrap(ErrInvalidTransition,
			fmt.Sprintf("machine %q: no transition for (%s, %s)", t.name, current, event))
	}
	return tr, nil
}
