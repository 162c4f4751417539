package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"chestshop/define"
)

// LoadError is a read or parse failure of the config file. It is only ever logged.
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %v %v: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FieldError reports a persisted value that was ignored in favour of its default.
type FieldError struct {
	Key  string
	Line int
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v (line %v): %v", e.Key, e.Line, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type fieldSetter func(n *yaml.Node) error

func boolField(dst *bool) fieldSetter {
	return func(n *yaml.Node) error {
		var v bool
		if err := n.Decode(&v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stringField(dst *string) fieldSetter {
	return func(n *yaml.Node) error {
		if n.Kind != yaml.ScalarNode {
			return fmt.Errorf("expected a string")
		}
		var v string
		if err := n.Decode(&v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func materialField(dst *define.Material) fieldSetter {
	return func(n *yaml.Node) error {
		var v string
		if err := stringField(&v)(n); err != nil {
			return err
		}
		if v == "" {
			return fmt.Errorf("material must not be empty")
		}
		*dst = define.Material(v)
		return nil
	}
}

// fields binds every known key to the field of c it overrides.
func (c *Configuration) fields() map[string]map[string]fieldSetter {
	return map[string]map[string]fieldSetter{
		"settings": {
			"enable_shop_creation": boolField(&c.Settings.EnableShopCreation),
			"debug_mode":           boolField(&c.Settings.DebugMode),
		},
		"messages": {
			"shop_detected":          stringField(&c.Messages.ShopDetected),
			"no_shop_permission":     stringField(&c.Messages.NoShopPermission),
			"shop_must_be_in_town":   stringField(&c.Messages.ShopMustBeInTown),
			"shop_creation_disabled": stringField(&c.Messages.ShopCreationDisabled),
			"chest_interact":         stringField(&c.Messages.ChestInteract),
			"shop_break_denied":      stringField(&c.Messages.ShopBreakDenied),
			"shop_removed":           stringField(&c.Messages.ShopRemoved),
			"not_a_shop":             stringField(&c.Messages.NotAShop),
			"players_only":           stringField(&c.Messages.PlayersOnly),
			"config_reloaded":        stringField(&c.Messages.ConfigReloaded),
			"no_reload_permission":   stringField(&c.Messages.NoReloadPermission),
		},
		"towny": {
			"enable_towny_integration": boolField(&c.Towny.EnableTownyIntegration),
			"require_town":             boolField(&c.Towny.RequireTown),
		},
		"permissions": {
			"enable_permissions":     boolField(&c.Permissions.EnablePermissions),
			"create_shop_permission": stringField(&c.Permissions.CreateShopPermission),
			"reload_permission":      stringField(&c.Permissions.ReloadPermission),
		},
		"vault": {
			"enable_vault_integration": boolField(&c.Vault.EnableVaultIntegration),
		},
		"shop": {
			"chest_material": materialField(&c.Shop.ChestMaterial),
		},
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// mappingPairs flattens mapping n into key/value pairs in document order, expanding
// "<<" merge keys. Keys written in n win over merged ones, and among merged mappings
// the first one listed wins.
func mappingPairs(n *yaml.Node) ([][2]*yaml.Node, error) {
	var pairs [][2]*yaml.Node
	seen := make(map[string]bool)
	var merged []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		if isMergeKey(key) {
			switch val.Kind {
			case yaml.MappingNode:
				merged = append(merged, val)
			case yaml.SequenceNode:
				for _, item := range val.Content {
					item = deref(item)
					if item.Kind != yaml.MappingNode {
						return nil, fmt.Errorf("line %v: merge sequence holds a non-mapping", item.Line)
					}
					merged = append(merged, item)
				}
			default:
				return nil, fmt.Errorf("line %v: merge value is not a mapping", val.Line)
			}
			continue
		}
		if !seen[key.Value] {
			seen[key.Value] = true
			pairs = append(pairs, [2]*yaml.Node{key, val})
		}
	}
	for _, m := range merged {
		sub, err := mappingPairs(m)
		if err != nil {
			return nil, err
		}
		for _, p := range sub {
			if !seen[p[0].Value] {
				seen[p[0].Value] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

// Decode merges the YAML document in data over Defaults, one key at a time. Keys that
// are missing, null or of the wrong type keep their default and are reported in the
// returned slice. The error is non-nil only when data is not YAML at all or its top
// level is not a mapping; the returned Configuration is then Defaults.
func Decode(data []byte) (*Configuration, []error, error) {
	c := Defaults()
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Defaults(), nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return c, nil, nil
	}
	root := deref(doc.Content[0])
	if isNull(root) {
		return c, nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return Defaults(), nil, fmt.Errorf("line %v: top level is not a mapping", root.Line)
	}

	rootPairs, err := mappingPairs(root)
	if err != nil {
		return Defaults(), nil, err
	}
	var problems []error
	sections := c.fields()
	for _, section := range rootPairs {
		name, body := section[0].Value, section[1]
		fields, ok := sections[name]
		if !ok || isNull(body) {
			continue
		}
		if body.Kind != yaml.MappingNode {
			problems = append(problems, &FieldError{Key: name, Line: body.Line, Err: fmt.Errorf("expected a mapping")})
			continue
		}
		pairs, err := mappingPairs(body)
		if err != nil {
			problems = append(problems, &FieldError{Key: name, Line: body.Line, Err: err})
			continue
		}
		for _, pair := range pairs {
			key, val := pair[0].Value, pair[1]
			set, ok := fields[key]
			if !ok || isNull(val) {
				continue
			}
			if err := set(val); err != nil {
				problems = append(problems, &FieldError{Key: name + "." + key, Line: val.Line, Err: err})
			}
		}
	}
	return c, problems, nil
}

// Load resolves the configuration at path. A missing file is created with the
// defaults; an unreadable or unparseable file is left untouched and the defaults are
// used. Load never fails.
func Load(path string, log *zap.Logger) *Configuration {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("path", path))

	c, missing := resolve(path, log)
	if missing {
		log.Info("config.yml not found, creating default")
		if err := Save(path, c); err != nil {
			log.Error("cannot write default config", zap.Error(err))
		}
	}
	return c
}

// Inspect resolves the configuration at path the way Load does but never writes: a
// missing file resolves to the defaults and stays missing.
func Inspect(path string, log *zap.Logger) *Configuration {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("path", path))

	c, missing := resolve(path, log)
	if missing {
		log.Info("config.yml not found, showing defaults")
	}
	return c
}

// resolve reads and decodes path, logging every problem. missing reports that the file
// does not exist; the defaults are returned then.
func resolve(path string, log *zap.Logger) (c *Configuration, missing bool) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), true
	}
	if err != nil {
		log.Error("using default configuration", zap.Error(&LoadError{Path: path, Op: "read", Err: err}))
		return Defaults(), false
	}

	c, problems, err := Decode(data)
	if err != nil {
		log.Error("using default configuration", zap.Error(&LoadError{Path: path, Op: "parse", Err: err}))
		return Defaults(), false
	}
	for _, p := range problems {
		log.Warn("ignoring malformed value, default kept", zap.Error(p))
	}
	log.Info("configuration loaded")
	if c.Settings.DebugMode {
		log.Info("debug mode is enabled")
	}
	return c, false
}

// Encode writes c as YAML with a two space indent.
func Encode(w io.Writer, c *Configuration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes c to path through a temporary file in the same directory, so a failed
// write never leaves a truncated config behind.
func Save(path string, c *Configuration) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create %v: %w", dir, err)
	}
	fp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("config: create temp file for %v: %w", path, err)
	}
	tmp := fp.Name()
	defer func() {
		if fp != nil {
			fp.Close()
			os.Remove(tmp)
		}
	}()

	if err := fp.Chmod(0o644); err != nil {
		return fmt.Errorf("config: chmod %v: %w", tmp, err)
	}
	if err := Encode(fp, c); err != nil {
		return fmt.Errorf("config: write %v: %w", path, err)
	}
	if err := fp.Sync(); err != nil {
		return fmt.Errorf("config: flush %v: %w", path, err)
	}
	err = fp.Close()
	fp = nil
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: close %v: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: replace %v: %w", path, err)
	}
	return nil
}
