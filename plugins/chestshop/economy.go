package chestshop

import (
	"go.uber.org/zap"

	"chestshop/config"
	"chestshop/define"
)

const (
	vaultPluginName = "Vault"
	economyService  = "Economy"
)

type economyHandle struct {
	provider define.Economy
}

// resolveEconomy walks the lookup chain and stops at the first step that fails. The
// returned step names that step when the provider is nil.
func (o *ChestShop) resolveEconomy(c *config.Configuration) (provider define.Economy, step string) {
	if !c.Vault.EnableVaultIntegration {
		return nil, "config"
	}
	if !o.caps.pluginPresent(vaultPluginName) {
		return nil, "plugin"
	}
	reg := o.caps.serviceRegistration(economyService)
	if reg == nil {
		return nil, "service"
	}
	provider = o.caps.economyProvider(reg)
	if provider == nil {
		return nil, "provider"
	}
	return provider, ""
}

var economyFailures = map[string]string{
	"config":   "Vault integration is disabled in config",
	"plugin":   "Vault plugin not found! Disabling Vault integration",
	"service":  "Vault Economy service not found! Disabling Vault integration",
	"provider": "Failed to get Vault Economy provider! Disabling Vault integration",
}

func (o *ChestShop) setupEconomy(c *config.Configuration) {
	provider, step := o.resolveEconomy(c)
	if provider == nil {
		o.economy.Store(nil)
		o.vaultEnabled.Store(false)
		o.log.Warn(economyFailures[step], zap.String("step", step))
		return
	}
	o.economy.Store(&economyHandle{provider: provider})
	o.vaultEnabled.Store(true)
	name, _ := guard(o.caps, define.CapabilityService, "unknown", func() (string, error) {
		return provider.Name(), nil
	})
	o.log.Info("Vault integration enabled", zap.String("provider", name))
}

// Economy is the provider found at enable time, nil when Vault integration is off.
func (o *ChestShop) Economy() define.Economy {
	h := o.economy.Load()
	if h == nil {
		return nil
	}
	return h.provider
}

func (o *ChestShop) VaultEnabled() bool {
	return o.vaultEnabled.Load()
}
