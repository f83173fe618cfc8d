package params

import (
	"encoding/json"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pakana/projector/common"
	"github.com/pakana/projector/log"
)

const (
	defaultAPIPort = 11556
)

var (
	locDataDir        string
	projectorConfig   = &ProjectorConfig{}
	loadConfigStarter sync.Once
)

// ProjectorConfig config items (decode from toml file)
type ProjectorConfig struct {
	Identifier    string
	Store         *StoreConfig
	Feed          *FeedConfig
	Projector     *ProjectionConfig
	APIServer     *APIServerConfig `toml:",omitempty" json:",omitempty"`
	MongoDB       *MongoDBConfig   `toml:",omitempty" json:",omitempty"`
	Email         *EmailConfig     `toml:",omitempty" json:",omitempty"`
	BlockListFile string           `toml:",omitempty" json:",omitempty"`
}

// StoreConfig hierarchical store config
type StoreConfig struct {
	Backend string // leveldb (default), bolt, badger, memory
	Path    string
	Cache   int `toml:",omitempty" json:",omitempty"`
	Handles int `toml:",omitempty" json:",omitempty"`
}

// FeedConfig ledger feed (horizon ingest) config
type FeedConfig struct {
	Enable         bool
	HorizonURLs    []string
	StartLedger    uint32 `toml:",omitempty" json:",omitempty"` // 0 means start from the latest ledger
	PollInterval   uint64 // seconds
	RequestTimeout uint64 // seconds
	RetryCount     int    `toml:",omitempty" json:",omitempty"`
}

// ProjectionConfig projection job config
type ProjectionConfig struct {
	PollInterval  uint64 // milliseconds
	RetryInterval uint64 // seconds
	AllowFeeBump  bool
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int
	APIKeys          []string `json:"-"`
	EnableHydration  bool
}

// MongoDBConfig mongodb config (audit sink)
type MongoDBConfig struct {
	DBURL    string   `toml:",omitempty" json:",omitempty"`
	DBURLs   []string `toml:",omitempty" json:",omitempty"`
	DBName   string
	UserName string `json:"-"`
	Password string `json:"-"`
}

// EmailConfig alert email config
type EmailConfig struct {
	Server   string
	Port     int
	From     string
	FromName string
	Password string `json:"-"`
	To       []string
	Cc       []string `toml:",omitempty" json:",omitempty"`
}

// GetAPIPort get api service port
func GetAPIPort() int {
	apiPort := 0
	if cfg := GetConfig().APIServer; cfg != nil {
		apiPort = cfg.Port
	}
	if apiPort == 0 {
		apiPort = defaultAPIPort
	}
	return apiPort
}

// GetIdentifier get identifier
func GetIdentifier() string {
	return GetConfig().Identifier
}

// GetConfig get projector config
func GetConfig() *ProjectorConfig {
	return projectorConfig
}

// SetConfig set projector config
func SetConfig(config *ProjectorConfig) {
	projectorConfig = config
}

// LoadConfig load config
func LoadConfig(configFile string) *ProjectorConfig {
	loadConfigStarter.Do(func() {
		if configFile == "" {
			log.Fatalf("LoadConfig error: no config file specified")
		}
		log.Println("Config file is", configFile)
		if !common.FileExist(configFile) {
			log.Fatalf("LoadConfig error: config file %v not exist", configFile)
		}
		config := &ProjectorConfig{}
		if _, err := toml.DecodeFile(configFile, &config); err != nil {
			log.Fatalf("LoadConfig error (toml DecodeFile): %v", err)
		}

		SetConfig(config)
		var bs []byte
		if log.JSONFormat {
			bs, _ = json.Marshal(config)
		} else {
			bs, _ = json.MarshalIndent(config, "", "  ")
		}
		log.Println("LoadConfig finished.", string(bs))
		if err := CheckConfig(); err != nil {
			log.Fatalf("Check config failed. %v", err)
		}
		log.Info("Check config success", "configFile", configFile)
	})
	return projectorConfig
}

// SetDataDir set data dir
func SetDataDir(dir string) {
	if dir == "" {
		return
	}
	locDataDir = common.AbsolutePath(common.CurrentDir(), dir)
	log.Info("set data dir success", "datadir", locDataDir)
}

// GetDataDir get data dir
func GetDataDir() string {
	return locDataDir
}
