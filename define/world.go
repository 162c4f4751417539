package define

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type Material string

const (
	MaterialAir     Material = "AIR"
	MaterialChest   Material = "CHEST"
	MaterialOakSign Material = "OAK_SIGN"
	MaterialStone   Material = "STONE"
)

// Location is a block coordinate; two locations are equal when world, x, y and z match.
type Location struct {
	World string `yaml:"world"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Z     int    `yaml:"z"`
}

func (l Location) String() string {
	return fmt.Sprintf("%v(%v, %v, %v)", l.World, l.X, l.Y, l.Z)
}

// BlockLocation returns the location of the block containing pos.
func BlockLocation(world string, pos mgl64.Vec3) Location {
	return Location{
		World: world,
		X:     int(math.Floor(pos.X())),
		Y:     int(math.Floor(pos.Y())),
		Z:     int(math.Floor(pos.Z())),
	}
}

type Block struct {
	Location Location
	Material Material
}

// Actor is a command sender. A nil *Actor is the server console.
type Actor struct {
	ID    uuid.UUID
	Name  string
	World string
	// Eye is the eye position; Yaw and Pitch are in degrees, Minecraft convention.
	Eye   mgl64.Vec3
	Yaw   float64
	Pitch float64
}

// Look returns the unit vector the actor is facing.
func (a *Actor) Look() mgl64.Vec3 {
	yaw := mgl64.DegToRad(a.Yaw)
	pitch := mgl64.DegToRad(a.Pitch)
	return mgl64.Vec3{
		-math.Sin(yaw) * math.Cos(pitch),
		-math.Sin(pitch),
		math.Cos(yaw) * math.Cos(pitch),
	}
}

func (a *Actor) String() string {
	if a == nil {
		return "CONSOLE"
	}
	return a.Name
}

type LocationSet map[Location]struct{}

func NewLocationSet(locs ...Location) LocationSet {
	s := make(LocationSet, len(locs))
	for _, l := range locs {
		s[l] = struct{}{}
	}
	return s
}

func (s LocationSet) Add(l Location) bool {
	if _, ok := s[l]; ok {
		return false
	}
	s[l] = struct{}{}
	return true
}

func (s LocationSet) Remove(l Location) bool {
	if _, ok := s[l]; !ok {
		return false
	}
	delete(s, l)
	return true
}

func (s LocationSet) Contains(l Location) bool {
	_, ok := s[l]
	return ok
}

func (s LocationSet) Len() int {
	return len(s)
}

// Slice returns the locations ordered by world, x, y, z.
func (s LocationSet) Slice() []Location {
	out := make([]Location, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.World != b.World {
			return a.World < b.World
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

func (s LocationSet) Clone() LocationSet {
	c := make(LocationSet, len(s))
	for l := range s {
		c[l] = struct{}{}
	}
	return c
}
