package plugins

import (
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"chestshop/define"
)

type StorageConfig struct {
	Root string `yaml:"root"`
	Logs string `yaml:"logs"`
	DB   string `yaml:"db"`
	// Console mirrors every log line to stderr.
	Console bool `yaml:"console"`
}

type Storage struct {
	logRoot string
	dbRoot  string
	console bool
	closeFn []func()
}

func (s *Storage) New(config []byte) define.Plugin {
	storageConfig := &StorageConfig{}
	err := yaml.Unmarshal(config, storageConfig)
	if err != nil {
		panic(err)
	}
	if storageConfig.Root == "" {
		storageConfig.Root = "data"
	}
	if storageConfig.Logs == "" {
		storageConfig.Logs = path.Join(storageConfig.Root, "logs")
	}
	if storageConfig.DB == "" {
		storageConfig.DB = path.Join(storageConfig.Root, "db")
	}
	st, err := NewStorage(storageConfig)
	if err != nil {
		panic(err)
	}
	return st
}

func (s *Storage) Routine() {

}

func (s *Storage) Inject(host define.Host, collaborationContext map[string]define.Plugin) define.Plugin {
	return s
}

func (s *Storage) Close() {
	for i := len(s.closeFn) - 1; i >= 0; i-- {
		s.closeFn[i]()
	}
	s.closeFn = nil
}

// RegLogger returns a logger writing to <logs>/<source>.log, and to stderr when the
// storage is configured with console output.
func (s *Storage) RegLogger(source string, level zap.AtomicLevel) *zap.Logger {
	fileName := path.Join(s.logRoot, source) + ".log"
	logFile, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Storage-Create: cannot create %v (%v)", fileName, err))
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(logFile), level),
	}
	if s.console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level))
	}
	logger := zap.New(zapcore.NewTee(cores...)).Named(source)
	s.closeFn = append(s.closeFn, func() {
		_ = logger.Sync()
		logFile.Close()
	})
	return logger
}

// RegShopStore opens (creating when needed) <db>/<name>.sqlite.
func (s *Storage) RegShopStore(name string) (define.ShopLocationStore, error) {
	store, err := OpenShopStore(path.Join(s.dbRoot, name) + ".sqlite")
	if err != nil {
		return nil, err
	}
	s.closeFn = append(s.closeFn, func() {
		store.Close()
	})
	return store, nil
}

func NewStorage(config *StorageConfig) (*Storage, error) {
	err := os.MkdirAll(config.Logs, 0o755)
	if err != nil {
		return nil, fmt.Errorf("Storage-Init: cannot create %v (%w)", config.Logs, err)
	}
	err = os.MkdirAll(config.DB, 0o755)
	if err != nil {
		return nil, fmt.Errorf("Storage-Init: cannot create %v (%w)", config.DB, err)
	}
	ret := &Storage{logRoot: config.Logs, dbRoot: config.DB, console: config.Console,
		closeFn: make([]func(), 0)}
	return ret, nil
}
