package config

import "chestshop/define"

const DefaultPath = "plugins/SimpleChestShop/config.yml"

type Settings struct {
	EnableShopCreation bool `yaml:"enable_shop_creation"`
	DebugMode          bool `yaml:"debug_mode"`
}

type Messages struct {
	ShopDetected         string `yaml:"shop_detected"`
	NoShopPermission     string `yaml:"no_shop_permission"`
	ShopMustBeInTown     string `yaml:"shop_must_be_in_town"`
	ShopCreationDisabled string `yaml:"shop_creation_disabled"`
	ChestInteract        string `yaml:"chest_interact"`
	ShopBreakDenied      string `yaml:"shop_break_denied"`
	ShopRemoved          string `yaml:"shop_removed"`
	NotAShop             string `yaml:"not_a_shop"`
	PlayersOnly          string `yaml:"players_only"`
	ConfigReloaded       string `yaml:"config_reloaded"`
	NoReloadPermission   string `yaml:"no_reload_permission"`
}

type Towny struct {
	EnableTownyIntegration bool `yaml:"enable_towny_integration"`
	RequireTown            bool `yaml:"require_town"`
}

type Permissions struct {
	EnablePermissions    bool   `yaml:"enable_permissions"`
	CreateShopPermission string `yaml:"create_shop_permission"`
	ReloadPermission     string `yaml:"reload_permission"`
}

type Vault struct {
	EnableVaultIntegration bool `yaml:"enable_vault_integration"`
}

type Shop struct {
	ChestMaterial define.Material `yaml:"chest_material"`
}

// Configuration is the resolved plugin configuration. Values are never mutated after
// Load returns; a reload produces a new Configuration.
type Configuration struct {
	Settings    Settings    `yaml:"settings"`
	Messages    Messages    `yaml:"messages"`
	Towny       Towny       `yaml:"towny"`
	Permissions Permissions `yaml:"permissions"`
	Vault       Vault       `yaml:"vault"`
	Shop        Shop        `yaml:"shop"`
}

func Defaults() *Configuration {
	return &Configuration{
		Settings: Settings{
			EnableShopCreation: true,
			DebugMode:          false,
		},
		Messages: Messages{
			ShopDetected:         "§a[Shop] System: Shop sign detected and enabled!",
			NoShopPermission:     "§c[Shop] System: You do not have permission to create shops.",
			ShopMustBeInTown:     "§c[Shop] System: Shops can only be created within town boundaries.",
			ShopCreationDisabled: "§c[Shop] System: Shop creation is currently disabled by the server.",
			ChestInteract:        "§bChest right-clicked!",
			ShopBreakDenied:      "§c[Shop] System: You cannot break a shop chest. Use /removeshop.",
			ShopRemoved:          "§a[Shop] System: Shop removed.",
			NotAShop:             "§c[Shop] System: That block is not a registered shop.",
			PlayersOnly:          "[Shop] System: This command can only be used by players.",
			ConfigReloaded:       "§a[Shop] System: Configuration reloaded.",
			NoReloadPermission:   "§c[Shop] System: You do not have permission to reload the shop configuration.",
		},
		Towny: Towny{
			EnableTownyIntegration: true,
			RequireTown:            false,
		},
		Permissions: Permissions{
			EnablePermissions:    true,
			CreateShopPermission: "chestshop.create",
			ReloadPermission:     "chestshop.reload",
		},
		Vault: Vault{
			EnableVaultIntegration: true,
		},
		Shop: Shop{
			ChestMaterial: define.MaterialChest,
		},
	}
}
