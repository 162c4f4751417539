package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"chestshop/config"
)

func TestCheckShopCreationExhaustive(t *testing.T) {
	bools := []bool{false, true}
	for _, permsEnabled := range bools {
		for _, granted := range bools {
			for _, townyEnabled := range bools {
				for _, requireTown := range bools {
					for _, inTown := range bools {
						for _, creation := range bools {
							c := config.Defaults()
							c.Permissions.EnablePermissions = permsEnabled
							c.Towny.EnableTownyIntegration = townyEnabled
							c.Towny.RequireTown = requireTown
							c.Settings.EnableShopCreation = creation

							var want Decision
							switch {
							case permsEnabled && !granted:
								want = DeniedNoPermission
							case townyEnabled && requireTown && !inTown:
								want = DeniedNotInTown
							case !creation:
								want = DeniedCreationDisabled
							default:
								want = Allowed
							}
							name := fmt.Sprintf("perms=%v granted=%v towny=%v require=%v in=%v creation=%v",
								permsEnabled, granted, townyEnabled, requireTown, inTown, creation)
							got := CheckShopCreation(c, granted, inTown)
							assert.Equal(t, want, got, name)
							assert.Equal(t, got, CheckShopCreation(c, granted, inTown), "idempotent: "+name)
						}
					}
				}
			}
		}
	}
}

func TestDecisionMessageAndCancel(t *testing.T) {
	c := config.Defaults()
	tests := []struct {
		decision Decision
		message  string
		cancel   bool
	}{
		{Allowed, c.Messages.ShopDetected, false},
		{DeniedNoPermission, c.Messages.NoShopPermission, true},
		{DeniedNotInTown, c.Messages.ShopMustBeInTown, true},
		{DeniedCreationDisabled, c.Messages.ShopCreationDisabled, true},
	}
	for _, tt := range tests {
		t.Run(tt.decision.String(), func(t *testing.T) {
			assert.Equal(t, tt.message, tt.decision.Message(c))
			assert.Equal(t, tt.cancel, tt.decision.Cancel())
		})
	}
}

func TestPermissionOutranksTown(t *testing.T) {
	c := config.Defaults()
	c.Towny.RequireTown = true
	c.Settings.EnableShopCreation = false
	assert.Equal(t, DeniedNoPermission, CheckShopCreation(c, false, false))
	assert.Equal(t, DeniedNotInTown, CheckShopCreation(c, true, false))
	assert.Equal(t, DeniedCreationDisabled, CheckShopCreation(c, true, true))
}
