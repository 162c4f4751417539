package define

import "go.uber.org/zap"

type Plugin interface {
	New(config []byte) Plugin
	Inject(host Host, collaborationContext map[string]Plugin) Plugin
	Routine()
	Close()
}

// LoggerProvider is implemented by plugins that hand out per-source loggers.
type LoggerProvider interface {
	RegLogger(source string, level zap.AtomicLevel) *zap.Logger
}

// ShopStoreProvider is implemented by plugins that can persist shop locations.
type ShopStoreProvider interface {
	RegShopStore(name string) (ShopLocationStore, error)
}

type ShopLocationStore interface {
	Load() (LocationSet, error)
	Save(set LocationSet) error
}
