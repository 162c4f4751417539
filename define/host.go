package define

import "fmt"

// Host is what the game server exposes to plugins. Every query may fail; callers
// treat a failure as an absent or negative answer.
type Host interface {
	AddEventCallback(kind EventKind, cb func(ev Event)) (int, error)
	RemoveEventCallback(kind EventKind, cbID int) bool
	Dispatch(ev Event)

	HasPermission(actor *Actor, node string) (bool, error)
	IsPluginPresent(name string) (bool, error)
	ServiceRegistration(service string) (ServiceRegistration, error)
	IsInTown(loc Location) (bool, error)
	BlockAt(loc Location) (Block, error)
	SendMessage(actor *Actor, msg string)
}

type ServiceRegistration interface {
	Provider() any
}

// Economy is the handle of a connected economy backend.
type Economy interface {
	Name() string
}

const (
	CapabilityPermission = "permission"
	CapabilityPlugin     = "plugin"
	CapabilityService    = "service"
	CapabilityTown       = "town"
	CapabilityBlock      = "block"
)

type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %v unavailable: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
