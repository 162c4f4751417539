package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"chestshop/config"
	"chestshop/define"
	"chestshop/host"
	"chestshop/plugins"
)

type options struct {
	DataDir       string `env:"CHESTSHOP_DATA_DIR" envDefault:"data"`
	ConfigPath    string `env:"CHESTSHOP_CONFIG" envDefault:"plugins/SimpleChestShop/config.yml"`
	PluginsConfig string `env:"CHESTSHOP_PLUGINS_CONFIG" envDefault:"plugins_config.yaml"`
	NoColor       bool   `env:"CHESTSHOP_NO_COLOR"`
	World         string `env:"CHESTSHOP_WORLD"`
}

type PluginConfig struct {
	Name    string      `yaml:"name"`
	As      string      `yaml:"as"`
	File    string      `yaml:"file"`
	Require []string    `yaml:"require"`
	Configs interface{} `yaml:"configs"`
}

type PluginSystemConfig struct {
	Version string         `yaml:"version"`
	Plugins []PluginConfig `yaml:"plugins"`
}

func main() {
	opts := &options{}
	if err := env.Parse(opts); err != nil {
		color.Red("Main: bad environment (%v)", err)
		os.Exit(2)
	}
	if err := newRootCmd(opts).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:          "chestshop",
		Short:        "Sign-and-chest shops behind a permission node and town membership",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.DataDir, "data", opts.DataDir, "directory holding logs and the shop database")
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "plugin configuration file")
	root.PersistentFlags().StringVar(&opts.PluginsConfig, "plugins", opts.PluginsConfig, "plugin system configuration file")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", opts.NoColor, "disable colored output")

	run := &cobra.Command{
		Use:   "run",
		Short: "Start the plugins and read commands from the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts)
		},
	}
	run.Flags().StringVar(&opts.World, "world", opts.World, "scenario file used to seed players, towns and blocks")

	root.AddCommand(
		run,
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return initConfig(opts)
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Print the configuration as it would be resolved at startup",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return checkConfig(opts, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "shops",
			Short: "List the registered shop chests",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listShops(opts)
			},
		},
		&cobra.Command{
			Use:   "simulate <scenario.yaml>",
			Short: "Replay a scenario against the plugins and print what players see",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return simulate(opts, args[0])
			},
		},
	)
	return root
}

// cliLogger writes to stderr so it never mixes with command output.
func cliLogger() *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), zap.InfoLevel)
	return zap.New(core)
}

func defaultPluginSystemConfig(opts *options) *PluginSystemConfig {
	return &PluginSystemConfig{
		Version: "0.0.0",
		Plugins: []PluginConfig{
			{Name: "storage", File: "internal", Configs: map[string]interface{}{"root": opts.DataDir}},
			{
				Name: "simple_chest_shop", As: "shop", File: "internal", Require: []string{"storage"},
				Configs: map[string]interface{}{"config_path": opts.ConfigPath},
			},
			{Name: "console", File: "internal", Require: []string{"shop"}},
		},
	}
}

// loadPluginSystemConfig reads the plugin list, falling back to the built-in one when
// the file does not exist.
func loadPluginSystemConfig(opts *options) (*PluginSystemConfig, error) {
	fp, err := os.Open(opts.PluginsConfig)
	if os.IsNotExist(err) {
		color.Yellow("Main: %v not found, using the built-in plugin list", opts.PluginsConfig)
		return defaultPluginSystemConfig(opts), nil
	}
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	cfg := &PluginSystemConfig{}
	if err := yaml.NewDecoder(fp).Decode(cfg); err != nil {
		return nil, fmt.Errorf("Main: Error at Unmarshal plugin config file (%v) (%v)", opts.PluginsConfig, err)
	}
	return cfg, nil
}

func loadPlugins(h define.Host, config *PluginSystemConfig) (map[string]define.Plugin, func(), error) {
	if config.Version != "0.0.0" {
		return nil, nil, fmt.Errorf("Main-loadPlugins: Version %q Not Support!", config.Version)
	}
	closeFns := make([]func(), 0)
	closeAll := func() {
		for i := len(closeFns) - 1; i >= 0; i-- {
			closeFns[i]()
		}
	}
	collaborationContext := make(map[string]define.Plugin)
	for i, plugin := range config.Plugins {
		if plugin.As == "" {
			plugin.As = plugin.Name
		}
		color.Blue("loading Plugin: %v. %v As %v from %v", i, plugin.Name, plugin.As, plugin.File)
		for _, r := range plugin.Require {
			_, hasK := collaborationContext[r]
			if !hasK {
				closeAll()
				return nil, nil, fmt.Errorf(`plugin: %v require plugin: "%v", but "%v" has not injected!`, plugin.Name, r, r)
			}
		}
		if plugin.File != "internal" {
			closeAll()
			return nil, nil, fmt.Errorf("plugin: %v from %v, only internal plugins are supported", plugin.Name, plugin.File)
		}
		p, ok := plugins.Pool()[plugin.Name]
		if !ok {
			closeAll()
			return nil, nil, fmt.Errorf("No Such file Plugin: (%v)", plugin.Name)
		}
		pluginConfigBytes, _ := yaml.Marshal(plugin.Configs)
		pi := p().New(pluginConfigBytes).Inject(h, collaborationContext)
		collaborationContext[plugin.As] = pi
		closeFns = append(closeFns, pi.Close)
	}
	return collaborationContext, closeAll, nil
}

func worldHost(opts *options) (*host.Memory, error) {
	if opts.World == "" {
		return host.NewMemory(), nil
	}
	s, err := host.LoadScenario(opts.World)
	if err != nil {
		return nil, err
	}
	return s.Build(), nil
}

func runServer(opts *options) error {
	color.Blue("Collecting Infomation...")
	pluginsConfig, err := loadPluginSystemConfig(opts)
	if err != nil {
		return err
	}
	h, err := worldHost(opts)
	if err != nil {
		return err
	}
	h.OnMessage = func(msg host.Message) {
		fmt.Printf("[%v] %v\n", msg.To, stripFormatting(msg.Text))
	}
	color.Green("Information Collected!")

	loaded, closeFn, err := loadPlugins(h, pluginsConfig)
	if err != nil {
		return err
	}
	for _, pi := range loaded {
		go pi.Routine()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	s := <-c
	fmt.Println("Got signal:", s)
	// make sure data are saved
	closeFn()
	fmt.Println("Close Functions done")
	return nil
}

func initConfig(opts *options) error {
	if _, err := os.Stat(opts.ConfigPath); err == nil {
		color.Yellow("%v already exists, leaving it untouched", opts.ConfigPath)
		return nil
	}
	if err := config.Save(opts.ConfigPath, config.Defaults()); err != nil {
		return err
	}
	color.Green("wrote %v", opts.ConfigPath)
	return nil
}

func checkConfig(opts *options, w io.Writer) error {
	log := cliLogger()
	defer log.Sync()
	c := config.Inspect(opts.ConfigPath, log)
	return config.Encode(w, c)
}

func listShops(opts *options) error {
	file := filepath.Join(opts.DataDir, "db", "shops.sqlite")
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("no shop database at %v", file)
	}
	store, err := plugins.OpenShopStore(file)
	if err != nil {
		return err
	}
	defer store.Close()
	shops, err := store.Load()
	if err != nil {
		return err
	}
	for _, loc := range shops.Slice() {
		fmt.Println(loc)
	}
	color.Green("%v shop(s)", shops.Len())
	return nil
}

func simulate(opts *options, path string) error {
	s, err := host.LoadScenario(path)
	if err != nil {
		return err
	}
	pluginsConfig, err := loadPluginSystemConfig(opts)
	if err != nil {
		return err
	}
	// the console would compete with the scenario for commands
	kept := pluginsConfig.Plugins[:0:0]
	for _, p := range pluginsConfig.Plugins {
		if p.Name != "console" {
			kept = append(kept, p)
		}
	}
	pluginsConfig.Plugins = kept

	h := s.Build()
	h.OnMessage = func(msg host.Message) {
		color.Yellow("    -> %v: %v", msg.To, stripFormatting(msg.Text))
	}
	_, closeFn, err := loadPlugins(h, pluginsConfig)
	if err != nil {
		return err
	}
	defer closeFn()

	return s.Run(h, func(i int, step host.Step, ev define.Event) {
		fmt.Printf("#%d %v\n", i+1, describe(ev))
		if c, ok := ev.(interface{ Cancelled() bool }); ok && c.Cancelled() {
			color.Red("    cancelled")
		}
		if cmd, ok := ev.(*define.CommandEvent); ok && !cmd.Handled {
			color.Red("    Unknown command: %v", cmd.Name)
		}
	})
}

func describe(ev define.Event) string {
	switch e := ev.(type) {
	case *define.SignChangeEvent:
		return fmt.Sprintf("%v writes %q at %v", e.Actor, e.Lines, e.Block.Location)
	case *define.InteractEvent:
		if e.Clicked == nil {
			return fmt.Sprintf("%v %v", e.Actor, e.Action)
		}
		return fmt.Sprintf("%v %v %v at %v", e.Actor, e.Action, e.Clicked.Material, e.Clicked.Location)
	case *define.BlockBreakEvent:
		return fmt.Sprintf("%v breaks %v at %v", e.Actor, e.Block.Material, e.Block.Location)
	case *define.CommandEvent:
		return fmt.Sprintf("%v runs /%v %v", e.Sender, e.Name, strings.Join(e.Args, " "))
	}
	return ev.Kind().String()
}

// stripFormatting drops "§x" color codes.
func stripFormatting(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case skip:
			skip = false
		case r == '§':
			skip = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
