// Package host is an in-memory game server used to drive plugins outside a real
// server: by the simulate command and by tests.
package host

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"chestshop/define"
)

// Town is a claimed area covering whole columns between the two block corners.
type Town struct {
	Name  string `yaml:"name"`
	World string `yaml:"world"`
	MinX  int    `yaml:"min_x"`
	MinZ  int    `yaml:"min_z"`
	MaxX  int    `yaml:"max_x"`
	MaxZ  int    `yaml:"max_z"`
}

func (t Town) Contains(l define.Location) bool {
	return l.World == t.World && l.X >= t.MinX && l.X <= t.MaxX && l.Z >= t.MinZ && l.Z <= t.MaxZ
}

type Message struct {
	To   string
	Text string
}

// Economy is a named economy provider.
type Economy struct {
	name string
}

func NewEconomy(name string) *Economy {
	return &Economy{name: name}
}

func (e *Economy) Name() string {
	return e.name
}

type registration struct {
	provider any
}

func (r registration) Provider() any {
	return r.provider
}

type Memory struct {
	*Bus

	mu          sync.Mutex
	players     map[string]*define.Actor
	permissions map[uuid.UUID]map[string]bool
	plugins     map[string]bool
	services    map[string]define.ServiceRegistration
	towns       []Town
	blocks      map[define.Location]define.Material
	messages    []Message
	failures    map[string]error

	// OnMessage, if set, sees every message as it is sent.
	OnMessage func(msg Message)
}

func NewMemory() *Memory {
	return &Memory{
		Bus:         NewBus(),
		players:     make(map[string]*define.Actor),
		permissions: make(map[uuid.UUID]map[string]bool),
		plugins:     make(map[string]bool),
		services:    make(map[string]define.ServiceRegistration),
		blocks:      make(map[define.Location]define.Material),
		failures:    make(map[string]error),
	}
}

// AddPlayer joins a player standing in world with the given permission nodes.
func (m *Memory) AddPlayer(name, world string, nodes ...string) *define.Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor := &define.Actor{ID: uuid.New(), Name: name, World: world}
	m.players[name] = actor
	perms := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		perms[n] = true
	}
	m.permissions[actor.ID] = perms
	return actor
}

func (m *Memory) Player(name string) (*define.Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[name]
	return p, ok
}

// Teleport places the player's eye at eye, facing yaw/pitch degrees.
func (m *Memory) Teleport(actor *define.Actor, eye mgl64.Vec3, yaw, pitch float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor.Eye = eye
	actor.Yaw = yaw
	actor.Pitch = pitch
}

// Grant gives actor the permission node, registering the actor's permission set if it
// joined without AddPlayer.
func (m *Memory) Grant(actor *define.Actor, node string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perms, ok := m.permissions[actor.ID]
	if !ok {
		perms = make(map[string]bool)
		m.permissions[actor.ID] = perms
	}
	perms[node] = true
}

func (m *Memory) InstallPlugin(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins[name] = true
}

func (m *Memory) RegisterService(service string, provider any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service] = registration{provider: provider}
}

func (m *Memory) AddTown(t Town) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.towns = append(m.towns, t)
}

func (m *Memory) SetBlock(loc define.Location, material define.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if material == define.MaterialAir {
		delete(m.blocks, loc)
		return
	}
	m.blocks[loc] = material
}

// Fail makes every query of capability return err until cleared with a nil err.
func (m *Memory) Fail(capability string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, capability)
		return
	}
	m.failures[capability] = err
}

func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// MessagesTo returns the texts sent to name, oldest first.
func (m *Memory) MessagesTo(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0)
	for _, msg := range m.messages {
		if msg.To == name {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (m *Memory) failure(capability string) error {
	if err, ok := m.failures[capability]; ok {
		return fmt.Errorf("%v lookup failed: %w", capability, err)
	}
	return nil
}

func (m *Memory) HasPermission(actor *define.Actor, node string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(define.CapabilityPermission); err != nil {
		return false, err
	}
	if actor == nil {
		return true, nil
	}
	perms, ok := m.permissions[actor.ID]
	if !ok {
		return false, fmt.Errorf("unknown player %v", actor.Name)
	}
	return perms[node], nil
}

func (m *Memory) IsPluginPresent(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(define.CapabilityPlugin); err != nil {
		return false, err
	}
	return m.plugins[name], nil
}

// ServiceRegistration returns nil without error when nothing provides service.
func (m *Memory) ServiceRegistration(service string) (define.ServiceRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(define.CapabilityService); err != nil {
		return nil, err
	}
	return m.services[service], nil
}

func (m *Memory) IsInTown(loc define.Location) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(define.CapabilityTown); err != nil {
		return false, err
	}
	for _, t := range m.towns {
		if t.Contains(loc) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) BlockAt(loc define.Location) (define.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(define.CapabilityBlock); err != nil {
		return define.Block{}, err
	}
	material, ok := m.blocks[loc]
	if !ok {
		material = define.MaterialAir
	}
	return define.Block{Location: loc, Material: material}, nil
}

func (m *Memory) SendMessage(actor *define.Actor, text string) {
	msg := Message{To: actor.String(), Text: text}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	onMessage := m.OnMessage
	m.mu.Unlock()
	if onMessage != nil {
		onMessage(msg)
	}
}
