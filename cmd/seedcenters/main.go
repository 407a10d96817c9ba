// seedcenters writes the service center list into the Redis hash the
// directory feed reads from. Centers come from a YAML file or, with
// --defaults, from the built-in seed list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/internal/infra/redis"
	"github.com/vogiaan1904/spotqueue/internal/models"
	repo "github.com/vogiaan1904/spotqueue/internal/repository/redis"
	pkgLog "github.com/vogiaan1904/spotqueue/pkg/logger"
	"gopkg.in/yaml.v3"
)

type centersFile struct {
	Centers []models.ServiceCenter `yaml:"centers"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		filePath string
		defaults bool
		redisKey string
		dryRun   bool
	)

	flagSet := pflag.NewFlagSet("seedcenters", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", "", "path to a YAML file with a top-level centers list")
	flagSet.BoolVar(&defaults, "defaults", false, "seed the built-in center list")
	flagSet.StringVar(&redisKey, "key", "", "redis hash key (default: DIRECTORY_REDIS_KEY)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "print the centers without writing them")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var centers []models.ServiceCenter
	switch {
	case filePath != "" && defaults:
		return errors.New("--file and --defaults are mutually exclusive")
	case defaults:
		centers = directory.DefaultCenters()
	case filePath != "":
		f, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()

		centers, err = loadCenters(f)
		if err != nil {
			return fmt.Errorf("%s: %w", filePath, err)
		}
	default:
		return errors.New("one of --file or --defaults is required")
	}

	if dryRun {
		return yaml.NewEncoder(os.Stdout).Encode(centersFile{Centers: centers})
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if redisKey == "" {
		redisKey = cfg.Directory.RedisKey
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli, err := redis.Connect(ctx, cfg.Redis, l)
	if err != nil {
		return err
	}
	defer redis.Disconnect(ctx, cli, l)

	return repo.NewRedisCenterFeed(cli, redisKey, l).ReplaceCenters(ctx, centers)
}

// loadCenters decodes and validates a centers document. Duplicate ids are
// rejected since the hash would silently keep only the last one.
func loadCenters(r io.Reader) ([]models.ServiceCenter, error) {
	var doc centersFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode centers: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Centers))
	for _, c := range doc.Centers {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("center %q: %w", c.ID, err)
		}
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("center %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return doc.Centers, nil
}
