package params

import (
	"errors"
	"fmt"

	"github.com/pakana/projector/common"
	"github.com/pakana/projector/kvdb"
)

const (
	defaultFeedPollInterval       = 5   // seconds
	defaultFeedRequestTimeout     = 30  // seconds
	defaultProjectionPollInterval = 500 // milliseconds
	defaultRetryInterval          = 10  // seconds
	defaultMaxRequestsLimit       = 10  // per second
	defaultStorePath              = "projector.db"
)

// CheckConfig check config and fill in defaults
func CheckConfig() (err error) {
	config := GetConfig()
	if config.Identifier == "" {
		return errors.New("projector must config non empty 'Identifier'")
	}
	if config.Store == nil {
		return errors.New("projector must config 'Store'")
	}
	if err = config.Store.CheckConfig(); err != nil {
		return err
	}
	if config.Feed == nil {
		config.Feed = &FeedConfig{}
	}
	if err = config.Feed.CheckConfig(); err != nil {
		return err
	}
	if config.Projector == nil {
		config.Projector = &ProjectionConfig{}
	}
	config.Projector.CheckConfig()
	if config.APIServer != nil {
		if err = config.APIServer.CheckConfig(config.Feed); err != nil {
			return err
		}
	}
	if config.MongoDB != nil {
		if err = config.MongoDB.CheckConfig(); err != nil {
			return err
		}
	}
	if config.Email != nil {
		if err = config.Email.CheckConfig(); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfig check store config
func (c *StoreConfig) CheckConfig() error {
	switch c.Backend {
	case "":
		c.Backend = kvdb.EngineLevelDB
	case kvdb.EngineLevelDB, kvdb.EngineBolt, kvdb.EngineBadger, kvdb.EngineMemory:
	default:
		return fmt.Errorf("unknown 'Store.Backend' %q", c.Backend)
	}
	if c.Path == "" && c.Backend != kvdb.EngineMemory {
		c.Path = defaultStorePath
	}
	if c.Path != "" {
		c.Path = AbsolutePath(c.Path)
	}
	return nil
}

// AbsolutePath resolves path against the data dir.
func AbsolutePath(path string) string {
	if dir := GetDataDir(); dir != "" {
		return common.AbsolutePath(dir, path)
	}
	return path
}

// CheckConfig check feed config
func (c *FeedConfig) CheckConfig() error {
	if c.Enable && len(c.HorizonURLs) == 0 {
		return errors.New("feed must config 'Feed.HorizonURLs' when enabled")
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultFeedPollInterval
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultFeedRequestTimeout
	}
	if c.RetryCount < 0 {
		return errors.New("'Feed.RetryCount' must not be negative")
	}
	return nil
}

// CheckConfig check projection config
func (c *ProjectionConfig) CheckConfig() {
	if c.PollInterval == 0 {
		c.PollInterval = defaultProjectionPollInterval
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = defaultRetryInterval
	}
}

// CheckConfig check api server config
func (c *APIServerConfig) CheckConfig(feed *FeedConfig) error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid 'APIServer.Port' %v", c.Port)
	}
	if c.MaxRequestsLimit == 0 {
		c.MaxRequestsLimit = defaultMaxRequestsLimit
	}
	if c.EnableHydration && len(feed.HorizonURLs) == 0 {
		return errors.New("hydration needs 'Feed.HorizonURLs'")
	}
	return nil
}

// CheckConfig check mongodb config
func (c *MongoDBConfig) CheckConfig() error {
	if c.DBURL == "" && len(c.DBURLs) == 0 {
		return errors.New("mongodb must config 'DBURL' or 'DBURLs'")
	}
	if c.DBName == "" {
		return errors.New("mongodb must config 'DBName'")
	}
	return nil
}

// CheckConfig check email config
func (c *EmailConfig) CheckConfig() error {
	if c.Server == "" || c.Port == 0 {
		return errors.New("email must config 'Server' and 'Port'")
	}
	if c.From == "" {
		return errors.New("email must config 'From'")
	}
	if len(c.To) == 0 {
		return errors.New("email must config 'To'")
	}
	return nil
}
