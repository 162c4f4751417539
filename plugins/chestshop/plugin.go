// Package chestshop turns "[shop]" signs on chests into shops, guarded by a
// permission node and, optionally, town membership.
package chestshop

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"chestshop/config"
	"chestshop/define"
)

//    {
//      "name": "simple_chest_shop",
//      "as": "shop",
//      "file": "internal",
//      "require": ["storage"],
//      "configs": {
//        "config_path": "plugins/SimpleChestShop/config.yml",
//        "log_plugin": "storage",
//        "log_name": "simple-chest-shop",
//        "store_plugin": "storage",
//        "store_name": "shops"
//      }
//    }

type ChestShop struct {
	ConfigPath  string `yaml:"config_path"`
	LogPlugin   string `yaml:"log_plugin"`
	LogName     string `yaml:"log_name"`
	StorePlugin string `yaml:"store_plugin"`
	StoreName   string `yaml:"store_name"`

	host  define.Host
	caps  capabilities
	log   *zap.Logger
	level zap.AtomicLevel

	cfg          atomic.Pointer[config.Configuration]
	economy      atomic.Pointer[economyHandle]
	vaultEnabled atomic.Bool

	// mu serializes handlers with Close and Shops. No handler runs once closed is set.
	mu     sync.Mutex
	closed bool
	shops  define.LocationSet
	cbIDs  map[define.EventKind]int

	// saveMu serializes writes to store, which is nil once the plugin is closed.
	saveMu    sync.Mutex
	store     define.ShopLocationStore
	saveQ     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (o *ChestShop) New(cfg []byte) define.Plugin {
	o.ConfigPath = config.DefaultPath
	o.LogPlugin = "storage"
	o.LogName = "simple-chest-shop"
	o.StorePlugin = "storage"
	o.StoreName = "shops"
	err := yaml.Unmarshal(cfg, o)
	if err != nil {
		panic(err)
	}
	o.level = zap.NewAtomicLevelAt(zap.InfoLevel)
	o.log = zap.NewNop()
	o.shops = define.NewLocationSet()
	o.cbIDs = make(map[define.EventKind]int)
	o.saveQ = make(chan struct{}, 1)
	o.done = make(chan struct{})
	return o
}

func (o *ChestShop) Inject(host define.Host, collaborationContext map[string]define.Plugin) define.Plugin {
	o.host = host
	if p, ok := collaborationContext[o.LogPlugin].(define.LoggerProvider); ok && o.LogName != "" {
		o.log = p.RegLogger(o.LogName, o.level)
	}
	o.caps = capabilities{host: host, log: o.log}
	if p, ok := collaborationContext[o.StorePlugin].(define.ShopStoreProvider); ok && o.StoreName != "" {
		store, err := p.RegShopStore(o.StoreName)
		if err != nil {
			o.log.Error("shop store unavailable, shops will not survive a restart", zap.Error(err))
		} else {
			o.store = store
		}
	}
	o.Enable()
	o.on(define.EventSignChange, func(ev define.Event) { o.SignChange(ev.(*define.SignChangeEvent)) })
	o.on(define.EventInteract, func(ev define.Event) { o.Interact(ev.(*define.InteractEvent)) })
	o.on(define.EventBlockBreak, func(ev define.Event) { o.BlockBreak(ev.(*define.BlockBreakEvent)) })
	o.on(define.EventCommand, func(ev define.Event) { o.Command(ev.(*define.CommandEvent)) })
	return o
}

// on registers handle for kind. A panicking handler is logged and the event passes
// through as it was.
func (o *ChestShop) on(kind define.EventKind, handle func(ev define.Event)) {
	id, err := o.host.AddEventCallback(kind, func(ev define.Event) {
		defer func() {
			if r := recover(); r != nil {
				o.log.Error("event handler panicked", zap.Stringer("event", kind), zap.Error(fmt.Errorf("%v", r)))
			}
		}()
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed {
			return
		}
		handle(ev)
	})
	if err != nil {
		o.log.Error("cannot listen to event", zap.Stringer("event", kind), zap.Error(err))
		return
	}
	o.cbIDs[kind] = id
}

// Enable loads the configuration, looks for an economy provider and restores the
// shop set. Nothing here can abort the plugin.
func (o *ChestShop) Enable() {
	c := config.Load(o.ConfigPath, o.log)
	o.publish(c)
	o.log.Info("Plugin enabled!")
	o.setupEconomy(c)
	o.loadShops()
}

func (o *ChestShop) publish(c *config.Configuration) {
	if c.Settings.DebugMode {
		o.level.SetLevel(zap.DebugLevel)
	} else {
		o.level.SetLevel(zap.InfoLevel)
	}
	o.cfg.Store(c)
}

// Config is the configuration currently in effect.
func (o *ChestShop) Config() *config.Configuration {
	return o.cfg.Load()
}

func (o *ChestShop) loadShops() {
	if o.store == nil {
		return
	}
	shops, err := o.store.Load()
	if err != nil {
		o.log.Error("cannot load shop locations, starting empty", zap.Error(err))
		return
	}
	o.shops = shops
	o.log.Info("shop locations loaded", zap.Int("count", shops.Len()))
}

// requestSave asks Routine to write the shop set. Handlers never touch the store
// themselves; without a running Routine the set is written by Close.
func (o *ChestShop) requestSave() {
	select {
	case o.saveQ <- struct{}{}:
	default:
	}
}

func (o *ChestShop) flush() {
	o.mu.Lock()
	snapshot := o.shops.Clone()
	o.mu.Unlock()
	o.saveMu.Lock()
	defer o.saveMu.Unlock()
	o.save(snapshot)
}

// save must be called with saveMu held.
func (o *ChestShop) save(snapshot define.LocationSet) {
	if o.store == nil {
		return
	}
	if err := o.store.Save(snapshot); err != nil {
		o.log.Error("cannot save shop locations", zap.Error(err))
	}
}

// Shops returns the registered shop chests in a stable order.
func (o *ChestShop) Shops() []define.Location {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shops.Slice()
}

// Routine writes the shop set whenever a handler changed it, until Close.
func (o *ChestShop) Routine() {
	for {
		select {
		case <-o.saveQ:
			o.flush()
		case <-o.done:
			return
		}
	}
}

func (o *ChestShop) Close() {
	o.mu.Lock()
	o.closed = true
	for kind, id := range o.cbIDs {
		o.host.RemoveEventCallback(kind, id)
	}
	o.cbIDs = make(map[define.EventKind]int)
	snapshot := o.shops.Clone()
	o.mu.Unlock()

	o.closeOnce.Do(func() { close(o.done) })
	o.saveMu.Lock()
	o.save(snapshot)
	o.store = nil
	o.saveMu.Unlock()
	o.log.Info("Plugin disabled!")
	_ = o.log.Sync()
}
