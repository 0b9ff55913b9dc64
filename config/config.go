package config

import (
	"errors"
	"flag"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mbolis/ankietio/log"
)

type Config struct {
	APIUrl   string
	Origin   string
	DataFile string
	Timeout  time.Duration
	Debug    bool
}

// ParseFlags reads .env (if present) and the environment for defaults,
// then lets the command line flags override them. It returns the
// remaining positional arguments.
func ParseFlags(name string, args []string) (cfg Config, rest []string, err error) {
	loadDotenv()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.APIUrl, "api-url", env("ANKIETIO_API_URL", "http://localhost:8000/v1"), "base URL of the Ankietio API")
	fs.StringVar(&cfg.Origin, "origin", env("ANKIETIO_ORIGIN", "http://localhost:4200"), "public origin used to build share links")
	fs.StringVar(&cfg.DataFile, "data", env("ANKIETIO_DATA", "ankietio.sqlite"), "path to the local SQLite3 data file (empty keeps data in memory)")
	var timeout uint
	fs.UintVar(&timeout, "timeout", 30, "HTTP timeout in seconds")
	debug, _ := strconv.ParseBool(os.Getenv("ANKIETIO_DEBUG"))
	fs.BoolVar(&cfg.Debug, "debug", debug, "log at DEBUG level")

	err = fs.Parse(args)
	if err != nil {
		return
	}
	rest = fs.Args()
	cfg.Timeout = time.Duration(timeout) * time.Second

	_, err = cfg.BaseURL()
	return
}

// BaseURL validates APIUrl and returns it with a trailing slash, so that
// relative endpoint paths resolve below it.
func (cfg Config) BaseURL() (u *url.URL, err error) {
	u, err = url.Parse(cfg.APIUrl)
	if err != nil {
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		err = errors.New("invalid parameter -api-url: scheme must be http or https")
		return
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return
}

// loadDotenv reads the given env files (.env by default). A missing file
// is fine; a broken one is logged and skipped.
func loadDotenv(files ...string) {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debugf("config.dotenv: %s", err)
	}
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
