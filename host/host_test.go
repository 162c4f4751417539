package host

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chestshop/define"
)

func TestBusCallbacks(t *testing.T) {
	bus := NewBus()
	var got []int
	id1, err := bus.AddEventCallback(define.EventInteract, func(define.Event) { got = append(got, 1) })
	require.NoError(t, err)
	_, err = bus.AddEventCallback(define.EventInteract, func(define.Event) { got = append(got, 2) })
	require.NoError(t, err)
	_, err = bus.AddEventCallback(define.EventBlockBreak, func(define.Event) { got = append(got, 3) })
	require.NoError(t, err)

	bus.Dispatch(&define.InteractEvent{})
	assert.Equal(t, []int{1, 2}, got)

	assert.True(t, bus.RemoveEventCallback(define.EventInteract, id1))
	assert.False(t, bus.RemoveEventCallback(define.EventInteract, id1))
	got = nil
	bus.Dispatch(&define.InteractEvent{})
	assert.Equal(t, []int{2}, got)

	_, err = bus.AddEventCallback(define.EventKind(99), func(define.Event) {})
	assert.Error(t, err)
}

func TestMemoryCapabilities(t *testing.T) {
	m := NewMemory()
	steve := m.AddPlayer("Steve", "world", "chestshop.create")

	ok, err := m.HasPermission(steve, "chestshop.create")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.HasPermission(steve, "chestshop.reload")
	require.NoError(t, err)
	assert.False(t, ok)
	m.Grant(steve, "chestshop.reload")
	ok, err = m.HasPermission(steve, "chestshop.reload")
	require.NoError(t, err)
	assert.True(t, ok)

	// an actor the server never saw join
	stranger := &define.Actor{ID: uuid.New(), Name: "Herobrine"}
	_, err = m.HasPermission(stranger, "chestshop.create")
	assert.Error(t, err)
	require.NotPanics(t, func() { m.Grant(stranger, "chestshop.create") })
	ok, err = m.HasPermission(stranger, "chestshop.create")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.HasPermission(nil, "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	m.Fail(define.CapabilityPermission, errors.New("down"))
	_, err = m.HasPermission(steve, "chestshop.create")
	assert.Error(t, err)
	m.Fail(define.CapabilityPermission, nil)
	_, err = m.HasPermission(steve, "chestshop.create")
	assert.NoError(t, err)

	reg, err := m.ServiceRegistration("Economy")
	require.NoError(t, err)
	assert.Nil(t, reg)
	m.RegisterService("Economy", NewEconomy("Essentials"))
	reg, err = m.ServiceRegistration("Economy")
	require.NoError(t, err)
	assert.Equal(t, "Essentials", reg.Provider().(define.Economy).Name())

	m.AddTown(Town{Name: "Spawn", World: "world", MinX: -8, MinZ: -8, MaxX: 8, MaxZ: 8})
	in, err := m.IsInTown(define.Location{World: "world", X: 8, Y: 200, Z: -8})
	require.NoError(t, err)
	assert.True(t, in)
	in, err = m.IsInTown(define.Location{World: "world_nether", X: 0, Z: 0})
	require.NoError(t, err)
	assert.False(t, in)

	b, err := m.BlockAt(define.Location{World: "world"})
	require.NoError(t, err)
	assert.Equal(t, define.MaterialAir, b.Material)
}

func TestScenarioRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plugins: [Vault]
economy: Essentials
players:
  - name: Steve
    permissions: [chestshop.create]
blocks:
  - {at: [0, 64, 1], material: CHEST}
steps:
  - player: Steve
    sign: {at: [1, 64, 1], attached: [0, 64, 1], lines: ["[shop]"]}
  - player: Steve
    interact: {action: RIGHT_CLICK_BLOCK, at: [0, 64, 1]}
  - player: Steve
    break: {at: [0, 64, 1]}
  - player: Steve
    look: {eye: [0.5, 65.62, -1.5], yaw: 0, pitch: 30}
  - command: /shopreload now
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "world", s.World)
	m := s.Build()

	// cancel every break so the chest survives
	_, err = m.AddEventCallback(define.EventBlockBreak, func(ev define.Event) {
		ev.(*define.BlockBreakEvent).SetCancelled(true)
	})
	require.NoError(t, err)

	var kinds []define.EventKind
	require.NoError(t, s.Run(m, func(i int, step Step, ev define.Event) {
		kinds = append(kinds, ev.Kind())
		switch e := ev.(type) {
		case *define.SignChangeEvent:
			require.NotNil(t, e.Attached)
			assert.Equal(t, define.MaterialChest, e.Attached.Material)
		case *define.CommandEvent:
			assert.Nil(t, e.Sender)
			assert.Equal(t, "shopreload", e.Name)
			assert.Equal(t, []string{"now"}, e.Args)
		}
	}))
	assert.Equal(t, []define.EventKind{
		define.EventSignChange, define.EventInteract, define.EventBlockBreak, define.EventCommand,
	}, kinds)

	chest, err := m.BlockAt(define.Location{World: "world", X: 0, Y: 64, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, define.MaterialChest, chest.Material)
	steve, _ := m.Player("Steve")
	assert.Equal(t, 30.0, steve.Pitch)
}

func TestScenarioUnknownPlayer(t *testing.T) {
	s := &Scenario{World: "world", Steps: []Step{{Player: "Alex", Command: "/removeshop"}}}
	err := s.Run(s.Build(), nil)
	assert.ErrorContains(t, err, "unknown player")
}
