// Package policy decides whether a player may turn a sign into a shop.
package policy

import "chestshop/config"

type Decision int

const (
	Allowed Decision = iota
	DeniedNoPermission
	DeniedNotInTown
	DeniedCreationDisabled
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "Allowed"
	case DeniedNoPermission:
		return "DeniedNoPermission"
	case DeniedNotInTown:
		return "DeniedNotInTown"
	case DeniedCreationDisabled:
		return "DeniedCreationDisabled"
	}
	return "Unknown"
}

// Cancel reports whether the action that triggered the check must be vetoed.
func (d Decision) Cancel() bool {
	return d != Allowed
}

// Message is the configured text shown to the player for d.
func (d Decision) Message(c *config.Configuration) string {
	switch d {
	case DeniedNoPermission:
		return c.Messages.NoShopPermission
	case DeniedNotInTown:
		return c.Messages.ShopMustBeInTown
	case DeniedCreationDisabled:
		return c.Messages.ShopCreationDisabled
	}
	return c.Messages.ShopDetected
}

// NeedsPermission reports whether the permission answer affects the decision under c.
func NeedsPermission(c *config.Configuration) bool {
	return c.Permissions.EnablePermissions
}

// NeedsTown reports whether the town answer affects the decision under c.
func NeedsTown(c *config.Configuration) bool {
	return c.Towny.EnableTownyIntegration && c.Towny.RequireTown
}

// CheckShopCreation applies the rules in order; the first one that matches wins.
func CheckShopCreation(c *config.Configuration, permissionGranted, inTown bool) Decision {
	switch {
	case NeedsPermission(c) && !permissionGranted:
		return DeniedNoPermission
	case NeedsTown(c) && !inTown:
		return DeniedNotInTown
	case !c.Settings.EnableShopCreation:
		return DeniedCreationDisabled
	}
	return Allowed
}
