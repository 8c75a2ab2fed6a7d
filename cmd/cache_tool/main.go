package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/config"
	"github.com/2beens/fitsync/internal/db"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const usage = `fitsync cache tool

commands:
  inspect   print the local activity cache slot
  repair    remove a corrupt slot, settle a pending flush already applied remotely
  clear     remove the slot (unflushed activity is lost)
  token     print an identity token for -user (development only)
`

// inspects and repairs the on-device activity cache
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | test]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	userID := flag.String("user", "", "user id, used with the token command")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, flag.Arg(0), *userID); err != nil {
		fmt.Printf("%s failed: %s\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command, userID string) error {
	if command == "token" {
		return printToken(cfg, userID)
	}

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()
	activityCache := cache.New(backend, nil)

	switch command {
	case "inspect":
		insp, err := activityCache.Inspect(ctx)
		if err != nil {
			return err
		}
		return printJSON(insp)
	case "clear":
		if err := activityCache.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cache slot cleared")
		return nil
	case "repair":
		store, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := activityCache.Repair(ctx, store)
		if err != nil {
			return err
		}
		return printJSON(report)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (cache.Backend, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("FITSYNC_REDIS_PASS"),
		})
		return cache.NewRedisBackend(rdb, cfg.CacheRedisKey), func() { _ = rdb.Close() }, nil
	case config.CacheBackendSQLite:
		backend, err := cache.NewSQLiteBackend(ctx, cfg.CacheSQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return backend, func() { _ = backend.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("cache backend %s cannot be inspected from outside the agent", cfg.CacheBackend)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*remote.Repo, func(), error) {
	if cfg.RemoteBackend != config.RemoteBackendPostgres {
		return nil, nil, fmt.Errorf("repair needs the postgres remote backend, have: %s", cfg.RemoteBackend)
	}
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBPassword: os.Getenv("FITSYNC_POSTGRES_PASS"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("new db pool: %w", err)
	}
	return remote.NewRepo(dbPool), dbPool.Close, nil
}

func printToken(cfg *config.Config, userID string) error {
	if cfg.Environment == "production" || cfg.Environment == "prod" {
		return fmt.Errorf("tokens are issued by the identity provider in production")
	}
	if userID == "" {
		return fmt.Errorf("missing -user")
	}
	secret := os.Getenv("FITSYNC_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("jwt secret not set. use FITSYNC_JWT_SECRET")
	}

	token, err := auth.NewVerifier(secret, cfg.JWTIssuer).Sign(userID, 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(token)
	log.Debugf("token issued for %s", userID)
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
