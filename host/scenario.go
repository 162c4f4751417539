package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"chestshop/define"
)

// Pos is a block coordinate written as [x, y, z].
type Pos [3]int

func (p Pos) In(world string) define.Location {
	return define.Location{World: world, X: p[0], Y: p[1], Z: p[2]}
}

type ScenarioPlayer struct {
	Name        string     `yaml:"name"`
	Permissions []string   `yaml:"permissions"`
	Eye         [3]float64 `yaml:"eye"`
	Yaw         float64    `yaml:"yaw"`
	Pitch       float64    `yaml:"pitch"`
}

type ScenarioBlock struct {
	At       Pos             `yaml:"at"`
	Material define.Material `yaml:"material"`
}

type LookStep struct {
	Eye   [3]float64 `yaml:"eye"`
	Yaw   float64    `yaml:"yaw"`
	Pitch float64    `yaml:"pitch"`
}

type SignStep struct {
	At       Pos      `yaml:"at"`
	Attached *Pos     `yaml:"attached"`
	Lines    []string `yaml:"lines"`
}

type InteractStep struct {
	Action string `yaml:"action"`
	At     *Pos   `yaml:"at"`
}

type BreakStep struct {
	At Pos `yaml:"at"`
}

// Step is one thing a player (or the console, when Player is empty) does. Exactly one
// of the action fields is set.
type Step struct {
	Player   string        `yaml:"player"`
	Look     *LookStep     `yaml:"look"`
	Sign     *SignStep     `yaml:"sign"`
	Interact *InteractStep `yaml:"interact"`
	Break    *BreakStep    `yaml:"break"`
	Command  string        `yaml:"command"`
}

type Scenario struct {
	World   string           `yaml:"world"`
	Plugins []string         `yaml:"plugins"`
	Economy string           `yaml:"economy"`
	Towns   []Town           `yaml:"towns"`
	Players []ScenarioPlayer `yaml:"players"`
	Blocks  []ScenarioBlock  `yaml:"blocks"`
	Steps   []Step           `yaml:"steps"`
}

func LoadScenario(path string) (*Scenario, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	s := &Scenario{}
	if err := yaml.NewDecoder(fp).Decode(s); err != nil {
		return nil, fmt.Errorf("scenario %v: %w", path, err)
	}
	if s.World == "" {
		s.World = "world"
	}
	return s, nil
}

// Build creates the host described by the scenario, before any step runs.
func (s *Scenario) Build() *Memory {
	m := NewMemory()
	for _, p := range s.Plugins {
		m.InstallPlugin(p)
	}
	if s.Economy != "" {
		m.RegisterService("Economy", NewEconomy(s.Economy))
	}
	for _, t := range s.Towns {
		if t.World == "" {
			t.World = s.World
		}
		m.AddTown(t)
	}
	for _, p := range s.Players {
		actor := m.AddPlayer(p.Name, s.World, p.Permissions...)
		m.Teleport(actor, mgl64.Vec3(p.Eye), p.Yaw, p.Pitch)
	}
	for _, b := range s.Blocks {
		m.SetBlock(b.At.In(s.World), b.Material)
	}
	return m
}

// ParseCommand turns a typed line such as "/removeshop" into a command event.
func ParseCommand(sender *define.Actor, line string) (*define.CommandEvent, bool) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return nil, false
	}
	return &define.CommandEvent{Sender: sender, Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

func (s *Scenario) actor(m *Memory, name string) (*define.Actor, error) {
	if name == "" {
		return nil, nil
	}
	p, ok := m.Player(name)
	if !ok {
		return nil, fmt.Errorf("unknown player %q", name)
	}
	return p, nil
}

// Run plays every step against m. Events are dispatched on m and then handed to
// report, so cancellations made by plugins are visible there.
func (s *Scenario) Run(m *Memory, report func(i int, step Step, ev define.Event)) error {
	for i, step := range s.Steps {
		actor, err := s.actor(m, step.Player)
		if err != nil {
			return fmt.Errorf("step %v: %w", i, err)
		}
		var ev define.Event
		switch {
		case step.Look != nil:
			if actor == nil {
				return fmt.Errorf("step %v: look needs a player", i)
			}
			m.Teleport(actor, mgl64.Vec3(step.Look.Eye), step.Look.Yaw, step.Look.Pitch)
		case step.Sign != nil:
			ev, err = s.signEvent(m, actor, step.Sign)
		case step.Interact != nil:
			ev, err = s.interactEvent(m, actor, step.Interact)
		case step.Break != nil:
			ev, err = s.breakEvent(m, actor, step.Break)
		case step.Command != "":
			cmd, ok := ParseCommand(actor, step.Command)
			if !ok {
				err = fmt.Errorf("empty command")
			}
			ev = cmd
		default:
			err = fmt.Errorf("no action")
		}
		if err != nil {
			return fmt.Errorf("step %v: %w", i, err)
		}
		if ev == nil {
			continue
		}
		m.Dispatch(ev)
		s.apply(m, ev)
		if report != nil {
			report(i, step, ev)
		}
	}
	return nil
}

func (s *Scenario) signEvent(m *Memory, actor *define.Actor, st *SignStep) (define.Event, error) {
	if actor == nil {
		return nil, fmt.Errorf("sign needs a player")
	}
	loc := st.At.In(s.World)
	m.SetBlock(loc, define.MaterialOakSign)
	ev := &define.SignChangeEvent{
		Actor: actor,
		Lines: append([]string(nil), st.Lines...),
		Block: define.Block{Location: loc, Material: define.MaterialOakSign},
	}
	if st.Attached != nil {
		attached, err := m.BlockAt(st.Attached.In(s.World))
		if err != nil {
			return nil, err
		}
		ev.Attached = &attached
	}
	return ev, nil
}

func (s *Scenario) interactEvent(m *Memory, actor *define.Actor, st *InteractStep) (define.Event, error) {
	if actor == nil {
		return nil, fmt.Errorf("interact needs a player")
	}
	action, ok := define.ParseAction(st.Action)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", st.Action)
	}
	ev := &define.InteractEvent{Actor: actor, Action: action}
	if st.At != nil {
		clicked, err := m.BlockAt(st.At.In(s.World))
		if err != nil {
			return nil, err
		}
		ev.Clicked = &clicked
	}
	return ev, nil
}

func (s *Scenario) breakEvent(m *Memory, actor *define.Actor, st *BreakStep) (define.Event, error) {
	if actor == nil {
		return nil, fmt.Errorf("break needs a player")
	}
	block, err := m.BlockAt(st.At.In(s.World))
	if err != nil {
		return nil, err
	}
	return &define.BlockBreakEvent{Actor: actor, Block: block}, nil
}

// apply carries out what the server does once an event was not cancelled.
func (s *Scenario) apply(m *Memory, ev define.Event) {
	switch e := ev.(type) {
	case *define.SignChangeEvent:
		if e.Cancelled() {
			m.SetBlock(e.Block.Location, define.MaterialAir)
		}
	case *define.BlockBreakEvent:
		if !e.Cancelled() {
			m.SetBlock(e.Block.Location, define.MaterialAir)
		}
	}
}
