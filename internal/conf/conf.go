package conf

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AppName is the name of the software, used in logs and the -v output.
const AppName = "railmap"

// envPrefix namespaces the environment variables InitConfig overlays onto
// the config file (RAILMAP_SERVER_LISTENADDR and friends).
const envPrefix = "RAILMAP"

// Version is the version number of the software, a var so release builds
// can stamp it with -ldflags.
var Version = "0.1.0"

// Config is the full application configuration, populated by InitConfig from
// a TOML file overlaid by RAILMAP_-prefixed environment variables.
type Config struct {
	Server  ServerConfig
	Regions []RegionConfig
	Paths   PathsConfig
	Style   StyleConfig
	Cache   CacheConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr string
	Debug      bool
	DisableUi  bool
	// RateLimitPerSecond bounds per-client requests to every HTTP
	// endpoint, not only the tile routes; zero disables the limiter.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// RegionConfig names one region of the atlas: a region id plus the set of
// .map files (glob patterns, resolved relative to Paths.MapRoot) that make
// it up.
type RegionConfig struct {
	Name string
	Maps []string
}

// PathsConfig locates the on-disk corpus.
type PathsConfig struct {
	// MapRoot is the directory .map files in Regions are resolved against.
	MapRoot string
	// GeometryRoot is the directory the path store reads `<id>.path`
	// geometry files from.
	GeometryRoot string
}

// StyleConfig carries the raw numbers style.New turns into a style.Table.
type StyleConfig struct {
	DoubleTrackMeters  []float64
	SwitchLengthMeters []float64
	DetailUnitMeters   []float64
	PointMeters        float64
	ZoomThresholds     []int
}

// CacheConfig controls the tile cache (internal/cache).
type CacheConfig struct {
	Disabled    bool
	MaxItems    int
	MaxMemoryMB int
	// APIKey, if set, is required via the X-API-Key header on /reload,
	// /cache/clear and /cache/layer/{layer} (internal/service/admin.go);
	// /cache/stats does not check it.
	APIKey string
}

// Configuration is the process-wide configuration, populated by InitConfig.
var Configuration = Config{}

// defaults mirror the sample config.toml shipped under testdata/map; they
// let -t/--test and unit tests run without a config file.
func setDefaults() {
	viper.SetDefault("Server.ListenAddr", "127.0.0.1:8080")
	viper.SetDefault("Server.RateLimitPerSecond", 0.0)
	viper.SetDefault("Server.RateLimitBurst", 0)
	viper.SetDefault("Paths.MapRoot", "testdata/map")
	viper.SetDefault("Paths.GeometryRoot", "testdata/paths")
	viper.SetDefault("Style.DoubleTrackMeters", []float64{4.0})
	viper.SetDefault("Style.SwitchLengthMeters", []float64{40.0})
	viper.SetDefault("Style.DetailUnitMeters", []float64{1000.0, 500.0, 200.0, 50.0})
	viper.SetDefault("Style.PointMeters", 0.3528)
	viper.SetDefault("Style.ZoomThresholds", []int{6, 10, 13})
	viper.SetDefault("Cache.MaxItems", 4096)
	viper.SetDefault("Cache.MaxMemoryMB", 256)
}

// InitConfig loads configFilename (if non-empty) via viper, overlays
// RAILMAP_-prefixed environment variables, and populates Configuration.
// debugOn forces Server.Debug regardless of the file/env value:
// commandline over-rides config file for debugging.
func InitConfig(configFilename string, debugOn bool) {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFilename != "" {
		viper.SetConfigFile(configFilename)
		if err := viper.ReadInConfig(); err != nil {
			log.Warnf("could not read config file %s: %v", configFilename, err)
		}
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := viper.Unmarshal(&Configuration, viper.DecodeHook(decodeHook)); err != nil {
		log.Fatalf("could not decode configuration: %v", err)
	}

	if Configuration.Regions == nil {
		Configuration.Regions = []RegionConfig{}
	}

	if debugOn {
		Configuration.Server.Debug = true
	}
}

// DumpConfig logs the effective configuration at debug level.
func DumpConfig() {
	log.Debugf("%s %s configuration:", AppName, Version)
	log.Debugf("  Server.ListenAddr   = %s", Configuration.Server.ListenAddr)
	log.Debugf("  Server.Debug        = %v", Configuration.Server.Debug)
	log.Debugf("  Server.DisableUi    = %v", Configuration.Server.DisableUi)
	log.Debugf("  Paths.MapRoot       = %s", Configuration.Paths.MapRoot)
	log.Debugf("  Paths.GeometryRoot  = %s", Configuration.Paths.GeometryRoot)
	log.Debugf("  Regions             = %d configured", len(Configuration.Regions))
	log.Debugf("  Cache.Disabled      = %v", Configuration.Cache.Disabled)
	log.Debugf("  Cache.MaxItems      = %d", Configuration.Cache.MaxItems)
	log.Debugf("  Cache.MaxMemoryMB   = %d", Configuration.Cache.MaxMemoryMB)
}
