package chestshop

import (
	"go.uber.org/zap"

	"chestshop/config"
	"chestshop/define"
)

const (
	CommandRemoveShop = "removeshop"
	CommandReload     = "shopreload"
)

func (o *ChestShop) Command(ev *define.CommandEvent) {
	switch ev.Name {
	case CommandRemoveShop:
		ev.Handled = true
		o.removeShop(ev.Sender)
	case CommandReload:
		ev.Handled = true
		o.reload(ev.Sender)
	}
}

func (o *ChestShop) removeShop(sender *define.Actor) {
	c := o.Config()
	if sender == nil {
		o.caps.sendMessage(nil, c.Messages.PlayersOnly)
		return
	}
	block, ok := o.targetBlock(sender, maxTargetDistance)
	if !ok || block.Material != c.Shop.ChestMaterial || !o.shops.Remove(block.Location) {
		o.caps.sendMessage(sender, c.Messages.NotAShop)
		return
	}
	o.requestSave()
	o.log.Info("shop removed", zap.Stringer("player", sender), zap.Stringer("at", block.Location))
	o.caps.sendMessage(sender, c.Messages.ShopRemoved)
}

// reload replaces the configuration as a whole; handlers pick it up on their next
// event. The economy handle is only resolved at enable time and is left alone.
func (o *ChestShop) reload(sender *define.Actor) {
	c := o.Config()
	if !o.caps.hasPermission(sender, c.Permissions.ReloadPermission) {
		o.caps.sendMessage(sender, c.Messages.NoReloadPermission)
		return
	}
	next := config.Load(o.ConfigPath, o.log)
	o.publish(next)
	o.log.Info("configuration reloaded", zap.Stringer("by", sender))
	o.caps.sendMessage(sender, next.Messages.ConfigReloaded)
}
