// Command fuelsales records fuel sales for the signed-in staff member's
// branch against the remote sales API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuelsales/internal/cache"
	"fuelsales/internal/config"
)

const usage = `usage: fuelsales <command> [flags]

commands:
  login      -login NAME [-password PW]   sign in and remember the branch
  logout                                  forget the stored session
  inventory                               list fuel types and unit prices
  list       [-fuel TYPE]                 list the branch's sales
  add        -fuel TYPE -liters N -payment MODE [-date YYYY-MM-DD]
  edit       -id N [-fuel TYPE] [-liters N] [-payment MODE] [-date YYYY-MM-DD]
  delete     -id N
`

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain returns the exit code so deferred cleanup runs before the process
// exits.
func runMain(args []string) int {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("env file ignored: %v", err)
	}
	cfg := config.LoadClient()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, closeCache := openSessionCache(ctx, cfg)
	defer closeCache()

	a := &app{
		cfg:    cfg,
		cache:  sessions,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	return a.exitCode(a.run(ctx, args))
}

func (a *app) exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprint(a.stderr, usage)
		return 2
	default:
		return 1
	}
}

// openSessionCache prefers Redis so a login survives between invocations.
// Without it the session only lasts for one command.
func openSessionCache(ctx context.Context, cfg config.ClientConfig) (cache.SessionCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemorySessionCache(), func() {}
	}

	redisCache := cache.NewRedisSessionCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable (%v), session will not persist", err)
		_ = redisCache.Close()
		return cache.NewMemorySessionCache(), func() {}
	}
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.Printf("close error: %v", err)
		}
	}
}

type app struct {
	cfg    config.ClientConfig
	cache  cache.SessionCache
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}
