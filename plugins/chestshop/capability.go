package chestshop

import (
	"fmt"

	"go.uber.org/zap"

	"chestshop/define"
)

// capabilities is the single place where host failures become absent answers. Every
// error and every panic coming out of the host is logged here and nowhere else.
type capabilities struct {
	host define.Host
	log  *zap.Logger
}

func guard[T any](c capabilities, capability string, fallback T, fn func() (T, error)) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("host capability panicked, treating as absent",
				zap.Error(&define.CapabilityError{Capability: capability, Err: fmt.Errorf("panic: %v", r)}))
			v, ok = fallback, false
		}
	}()
	res, err := fn()
	if err != nil {
		c.log.Warn("host capability failed, treating as absent",
			zap.Error(&define.CapabilityError{Capability: capability, Err: err}))
		return fallback, false
	}
	return res, true
}

func (c capabilities) hasPermission(actor *define.Actor, node string) bool {
	granted, _ := guard(c, define.CapabilityPermission, false, func() (bool, error) {
		return c.host.HasPermission(actor, node)
	})
	return granted
}

func (c capabilities) isInTown(loc define.Location) bool {
	inTown, _ := guard(c, define.CapabilityTown, false, func() (bool, error) {
		return c.host.IsInTown(loc)
	})
	return inTown
}

func (c capabilities) pluginPresent(name string) bool {
	present, _ := guard(c, define.CapabilityPlugin, false, func() (bool, error) {
		return c.host.IsPluginPresent(name)
	})
	return present
}

func (c capabilities) serviceRegistration(service string) define.ServiceRegistration {
	reg, _ := guard[define.ServiceRegistration](c, define.CapabilityService, nil, func() (define.ServiceRegistration, error) {
		return c.host.ServiceRegistration(service)
	})
	return reg
}

func (c capabilities) economyProvider(reg define.ServiceRegistration) define.Economy {
	provider, _ := guard[define.Economy](c, define.CapabilityService, nil, func() (define.Economy, error) {
		p := reg.Provider()
		if p == nil {
			return nil, nil
		}
		economy, ok := p.(define.Economy)
		if !ok {
			return nil, fmt.Errorf("provider %T is not an economy", p)
		}
		return economy, nil
	})
	return provider
}

func (c capabilities) blockAt(loc define.Location) (define.Block, bool) {
	return guard(c, define.CapabilityBlock, define.Block{}, func() (define.Block, error) {
		return c.host.BlockAt(loc)
	})
}

func (c capabilities) sendMessage(actor *define.Actor, msg string) {
	guard(c, "message", struct{}{}, func() (struct{}, error) {
		c.host.SendMessage(actor, msg)
		return struct{}{}, nil
	})
}
