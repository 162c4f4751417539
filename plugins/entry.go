package plugins

import (
	"chestshop/define"
	"chestshop/plugins/chestshop"
)

var pool map[string]func() define.Plugin
var isInit bool

func Pool() map[string]func() define.Plugin {
	if !isInit {
		pool = make(map[string]func() define.Plugin)

		// Registry
		pool["storage"] = func() define.Plugin { return &Storage{} }
		pool["console"] = func() define.Plugin { return &Console{} }
		pool["simple_chest_shop"] = func() define.Plugin { return &chestshop.ChestShop{} }

		isInit = true
	}
	return pool
}
