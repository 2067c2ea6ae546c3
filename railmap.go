package main

/*
# Running
Usage: ./railmap [-m config.toml] [-r region ...] [-l addr:port] [-t]

Browser: e.g. http://localhost:8080/

# Configuration
config.toml's [regions] table lists, per region, the .map file globs to
load; [paths] points at the .map and geometry corpora; [style] carries
the dt/sw/dl/bp unit constants.

# Logging
Logging to stdout via logrus; -d raises the level to debug.
*/

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"
	log "github.com/sirupsen/logrus"

	"github.com/railwayhistory/railmap/internal/atlas"
	"github.com/railwayhistory/railmap/internal/cache"
	"github.com/railwayhistory/railmap/internal/conf"
	"github.com/railwayhistory/railmap/internal/geom"
	"github.com/railwayhistory/railmap/internal/index"
	"github.com/railwayhistory/railmap/internal/load"
	"github.com/railwayhistory/railmap/internal/model"
	"github.com/railwayhistory/railmap/internal/service"
	"github.com/railwayhistory/railmap/internal/style"
	"github.com/railwayhistory/railmap/internal/watch"
)

// Process exit codes.
const (
	exitOK          = 0
	exitConfigError = 2
	exitRuntime     = 1
)

// regionList accumulates repeated -r/--region flags into an ordered
// slice; pborman/getopt dispatches repeatable flags through a custom
// getopt.Value rather than a built-in slice type.
type regionList struct{ values []string }

func (l *regionList) Set(value string, _ getopt.Option) error {
	l.values = append(l.values, value)
	return nil
}

func (l *regionList) String() string {
	return fmt.Sprintf("%v", l.values)
}

var (
	flagHelp       bool
	flagVersion    bool
	flagDebugOn    bool
	flagDevModeOn  bool
	flagTestModeOn bool
	flagConfigPath string
	flagListenAddr string
	flagRegions    regionList
	flagNoWatch    bool
)

func init() {
	getopt.FlagLong(&flagHelp, "help", '?', "Show command usage")
	getopt.FlagLong(&flagVersion, "version", 'v', "Output the version information")
	getopt.FlagLong(&flagDebugOn, "debug", 'd', "Set logging level to DEBUG")
	getopt.FlagLong(&flagDevModeOn, "devel", 0, "Run in development mode (implies --debug, disables rate limiting)")
	getopt.FlagLong(&flagTestModeOn, "test", 't', "Serve a small built-in mock atlas instead of loading config.toml's regions")
	getopt.FlagLong(&flagConfigPath, "map", 'm', "Map definition config.toml path")
	getopt.FlagLong(&flagRegions, "region", 'r', "Restrict loaded regions (repeatable)")
	getopt.FlagLong(&flagListenAddr, "listen", 'l', "Listen address (default 127.0.0.1:8080)")
	getopt.FlagLong(&flagNoWatch, "no-watch", 0, "Disable the filesystem watcher / hot reload")
}

func main() {
	getopt.Parse()

	if flagHelp {
		getopt.Usage()
		os.Exit(exitOK)
	}
	if flagVersion {
		fmt.Printf("%s %s\n", conf.AppName, conf.Version)
		os.Exit(exitOK)
	}

	if flagDevModeOn {
		flagDebugOn = true
		log.Info("running in development mode")
	}
	if flagDebugOn {
		log.SetLevel(log.DebugLevel)
	}
	log.Infof("---- %s %s ----", conf.AppName, conf.Version)

	conf.InitConfig(flagConfigPath, flagDebugOn)
	if flagListenAddr != "" {
		conf.Configuration.Server.ListenAddr = flagListenAddr
	}
	if flagDevModeOn {
		conf.Configuration.Server.RateLimitPerSecond = 0
	}
	conf.DumpConfig()

	var builder atlas.Builder
	if flagTestModeOn {
		builder = mockBuilder
	} else {
		builder = load.Builder(&conf.Configuration, flagRegions.values)
	}
	a, err := atlas.New(builder)
	if err != nil {
		log.WithError(err).Error("initial atlas load failed")
		os.Exit(exitConfigError)
	}

	var tc *cache.TileCache
	if conf.Configuration.Cache.Disabled {
		tc = cache.NewDisabledCache()
	} else {
		tc, err = cache.NewTileCache(conf.Configuration.Cache.MaxItems, conf.Configuration.Cache.MaxMemoryMB)
		if err != nil {
			log.WithError(err).Error("cache configuration error")
			os.Exit(exitConfigError)
		}
	}

	reloader := service.NewCacheInvalidatingReloader(a, tc)

	var watcher *watch.Watcher
	if !flagNoWatch {
		dirs := watchDirs(&conf.Configuration)
		if len(dirs) > 0 {
			watcher, err = watch.New(reloader, dirs)
			if err != nil {
				log.WithError(err).Warn("could not start filesystem watcher, hot reload disabled")
			} else {
				go watcher.Run()
				defer watcher.Close()
			}
		}
	}

	limiter := service.NewRateLimiter(
		conf.Configuration.Server.RateLimitPerSecond,
		conf.Configuration.Server.RateLimitBurst,
	)
	svc := service.New(a, tc, reloader, limiter)

	if err := service.Serve(&conf.Configuration, svc); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(exitRuntime)
	}
}

// mockBuilder backs -t/--test: a single synthetic track feature at every
// detail level, just enough to exercise the tile endpoints without a
// config.toml or a map/geometry corpus on disk.
func mockBuilder() (*atlas.Snapshot, error) {
	st, err := style.New(style.BuildParams{
		DoubleTrackMeters:  []float64{4.0},
		SwitchLengthMeters: []float64{40.0},
		DetailUnitMeters:   []float64{1000.0, 500.0, 200.0, 50.0},
		PointMeters:        0.3528,
		ZoomThresholds:     []int{6, 10, 13},
	})
	if err != nil {
		return nil, err
	}

	fset := &model.FeatureSet{}
	curve := geom.NewCurve([]geom.Point{
		{X: 1_000_000, Y: 7_500_000},
		{X: 1_050_000, Y: 7_550_000},
	})
	for detail := 1; detail <= style.MaxDetail; detail++ {
		fset.Append(&model.Feature{
			Kind:    model.Track,
			Geom:    model.Geometry{Curve: curve},
			Symbols: model.NewSymbolSet("first"),
			Detail:  detail,
			ZOrder:  model.DefaultZOrder(model.Track),
			BBox:    curve.BBox(),
		})
	}

	return &atlas.Snapshot{
		Features: fset,
		Index:    index.Build(fset),
		Style:    st,
		Layers:   model.StandardLayers(),
	}, nil
}

// watchDirs collects the distinct directories the filesystem watcher
// should observe: the map root and the geometry corpus root. fsnotify
// watches directories, not trees, so region subdirectories beyond these
// two roots are not separately discovered here.
func watchDirs(cfg *conf.Config) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range []string{cfg.Paths.MapRoot, cfg.Paths.GeometryRoot} {
		if dir == "" || seen[dir] {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}
