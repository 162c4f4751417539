package chestshop

import (
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"chestshop/define"
	"chestshop/policy"
)

const shopTag = "[shop]"

var foldedShopTag = cases.Fold().String(shopTag)

// isShopLine compares case-insensitively and without trimming: " [shop]" is not a
// shop sign.
func isShopLine(line string) bool {
	return cases.Fold().String(line) == foldedShopTag
}

func (o *ChestShop) SignChange(ev *define.SignChangeEvent) {
	if len(ev.Lines) == 0 || !isShopLine(ev.Lines[0]) {
		return
	}
	c := o.Config()
	granted := true
	if policy.NeedsPermission(c) {
		granted = o.caps.hasPermission(ev.Actor, c.Permissions.CreateShopPermission)
	}
	inTown := true
	if policy.NeedsTown(c) {
		inTown = o.caps.isInTown(ev.Block.Location)
	}
	decision := policy.CheckShopCreation(c, granted, inTown)
	o.log.Debug("shop sign placed",
		zap.Stringer("player", ev.Actor),
		zap.Stringer("at", ev.Block.Location),
		zap.Stringer("decision", decision))

	o.caps.sendMessage(ev.Actor, decision.Message(c))
	if decision.Cancel() {
		ev.SetCancelled(true)
		return
	}
	if ev.Attached != nil && ev.Attached.Material == c.Shop.ChestMaterial {
		if o.shops.Add(ev.Attached.Location) {
			o.log.Info("shop registered", zap.Stringer("player", ev.Actor), zap.Stringer("at", ev.Attached.Location))
			o.requestSave()
		}
	}
}

func (o *ChestShop) Interact(ev *define.InteractEvent) {
	if ev.Action != define.ActionRightClickBlock || ev.Clicked == nil {
		return
	}
	c := o.Config()
	if ev.Clicked.Material != c.Shop.ChestMaterial {
		return
	}
	o.caps.sendMessage(ev.Actor, c.Messages.ChestInteract)
}

func (o *ChestShop) BlockBreak(ev *define.BlockBreakEvent) {
	if !o.shops.Contains(ev.Block.Location) {
		return
	}
	o.log.Debug("shop break prevented", zap.Stringer("player", ev.Actor), zap.Stringer("at", ev.Block.Location))
	ev.SetCancelled(true)
	o.caps.sendMessage(ev.Actor, o.Config().Messages.ShopBreakDenied)
}
