package define

type EventKind int

const (
	EventSignChange EventKind = iota + 1
	EventInteract
	EventBlockBreak
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventSignChange:
		return "sign_change"
	case EventInteract:
		return "interact"
	case EventBlockBreak:
		return "block_break"
	case EventCommand:
		return "command"
	}
	return "unknown"
}

type Event interface {
	Kind() EventKind
}

type Action int

const (
	ActionRightClickBlock Action = iota + 1
	ActionLeftClickBlock
	ActionRightClickAir
	ActionLeftClickAir
	ActionPhysical
)

var actionNames = map[Action]string{
	ActionRightClickBlock: "RIGHT_CLICK_BLOCK",
	ActionLeftClickBlock:  "LEFT_CLICK_BLOCK",
	ActionRightClickAir:   "RIGHT_CLICK_AIR",
	ActionLeftClickAir:    "LEFT_CLICK_AIR",
	ActionPhysical:        "PHYSICAL",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseAction is the inverse of Action.String.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return 0, false
}

// Cancellable is embedded by events whose triggering action can be vetoed.
type Cancellable struct {
	cancelled bool
}

func (c *Cancellable) SetCancelled(cancelled bool) {
	c.cancelled = cancelled
}

func (c *Cancellable) Cancelled() bool {
	return c.cancelled
}

type SignChangeEvent struct {
	Cancellable
	Actor *Actor
	Lines []string
	Block Block
	// Attached is the block the sign was placed against, nil for standing signs.
	Attached *Block
}

func (*SignChangeEvent) Kind() EventKind { return EventSignChange }

type InteractEvent struct {
	Cancellable
	Actor   *Actor
	Action  Action
	Clicked *Block
}

func (*InteractEvent) Kind() EventKind { return EventInteract }

type BlockBreakEvent struct {
	Cancellable
	Actor *Actor
	Block Block
}

func (*BlockBreakEvent) Kind() EventKind { return EventBlockBreak }

type CommandEvent struct {
	Sender  *Actor
	Name    string
	Args    []string
	Handled bool
}

func (*CommandEvent) Kind() EventKind { return EventCommand }
