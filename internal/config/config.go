package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds every tunable knob for a crawl run. Values are set through
// the With* builder methods and frozen by Build.
type Config struct {
	//===============
	// Crawl scope
	//===============
	// Path to the UTF-8 seed file, one URL per line, blank lines ignored.
	seedFilePath string
	// Number of seed lines to sample uniformly at random from the seed file.
	numSeeds int
	// Maximum number of pages the crawl may visit before terminating.
	maxPages int

	//===============
	// Concurrency
	//===============
	// Number of worker goroutines pulling from the frontier.
	numThreads int
	// Seed for the crawl's pseudo-random generator (seed sampling, rate-limit jitter).
	randomSeed int64

	//===============
	// Politeness / fetch
	//===============
	// User agent presented to every host, robots.txt included.
	userAgent string
	// TCP connect timeout for page fetches.
	connectTimeout time.Duration
	// Read timeout for page fetches.
	readTimeout time.Duration
	// TCP connect timeout for robots.txt fetches.
	robotsConnectTimeout time.Duration
	// Read timeout for robots.txt fetches.
	robotsReadTimeout time.Duration
	// Wall-clock budget for parsing a fetched HTML body.
	htmlParseBudget time.Duration
	// Minimum spacing between successful fetches against the same host.
	hostMinInterval time.Duration
	// Ceiling on cumulative wait for a host rate-limit acquire.
	hostMaxWait time.Duration

	//===============
	// Frontier / termination
	//===============
	// How long a worker blocks on an empty frontier pop before counting it.
	frontierPopTimeout time.Duration
	// Number of consecutive empty pops that trigger worker exit.
	retryBudgetEmpties int
	// Sleep between empty-pop retries.
	retryBudgetSleep time.Duration

	//===============
	// Output
	//===============
	// Directory the crawl report is written into.
	outputDir string
}

type configDTO struct {
	SeedFilePath         string        `json:"seedFilePath"`
	NumSeeds             int           `json:"numSeeds,omitempty"`
	MaxPages             int           `json:"maxPages,omitempty"`
	NumThreads           int           `json:"numThreads,omitempty"`
	RandomSeed           int64         `json:"randomSeed,omitempty"`
	UserAgent            string        `json:"userAgent,omitempty"`
	ConnectTimeout       time.Duration `json:"connectTimeout,omitempty"`
	ReadTimeout          time.Duration `json:"readTimeout,omitempty"`
	RobotsConnectTimeout time.Duration `json:"robotsConnectTimeout,omitempty"`
	RobotsReadTimeout    time.Duration `json:"robotsReadTimeout,omitempty"`
	HTMLParseBudget      time.Duration `json:"htmlParseBudget,omitempty"`
	HostMinInterval      time.Duration `json:"hostMinInterval,omitempty"`
	HostMaxWait          time.Duration `json:"hostMaxWait,omitempty"`
	FrontierPopTimeout   time.Duration `json:"frontierPopTimeout,omitempty"`
	RetryBudgetEmpties   int           `json:"retryBudgetEmpties,omitempty"`
	RetryBudgetSleep     time.Duration `json:"retryBudgetSleep,omitempty"`
	OutputDir            string        `json:"outputDir,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg, err := WithDefault(dto.SeedFilePath).Build()
	if err != nil {
		return Config{}, err
	}

	if dto.NumSeeds != 0 {
		cfg.numSeeds = dto.NumSeeds
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	if dto.NumThreads != 0 {
		cfg.numThreads = dto.NumThreads
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.ConnectTimeout != 0 {
		cfg.connectTimeout = dto.ConnectTimeout
	}
	if dto.ReadTimeout != 0 {
		cfg.readTimeout = dto.ReadTimeout
	}
	if dto.RobotsConnectTimeout != 0 {
		cfg.robotsConnectTimeout = dto.RobotsConnectTimeout
	}
	if dto.RobotsReadTimeout != 0 {
		cfg.robotsReadTimeout = dto.RobotsReadTimeout
	}
	if dto.HTMLParseBudget != 0 {
		cfg.htmlParseBudget = dto.HTMLParseBudget
	}
	if dto.HostMinInterval != 0 {
		cfg.hostMinInterval = dto.HostMinInterval
	}
	if dto.HostMaxWait != 0 {
		cfg.hostMaxWait = dto.HostMaxWait
	}
	if dto.FrontierPopTimeout != 0 {
		cfg.frontierPopTimeout = dto.FrontierPopTimeout
	}
	if dto.RetryBudgetEmpties != 0 {
		cfg.retryBudgetEmpties = dto.RetryBudgetEmpties
	}
	if dto.RetryBudgetSleep != 0 {
		cfg.retryBudgetSleep = dto.RetryBudgetSleep
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}

	return cfg, nil
}

// WithConfigFile loads a Config from a JSON file on disk.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	if err := json.Unmarshal(content, &dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}

// WithDefault creates a new Config rooted at seedFilePath with spec-default
// values for every other knob. seedFilePath is mandatory; Build rejects an
// empty one.
func WithDefault(seedFilePath string) *Config {
	return &Config{
		seedFilePath:         seedFilePath,
		numSeeds:             10,
		maxPages:             1000,
		numThreads:           30,
		randomSeed:           time.Now().UnixNano(),
		userAgent:            "Mozilla/5.0 (compatible; nzcrawl/1.0; +https://github.com/kowhai-tools/nzcrawl)",
		connectTimeout:       3 * time.Second,
		readTimeout:          8 * time.Second,
		robotsConnectTimeout: 3 * time.Second,
		robotsReadTimeout:    5 * time.Second,
		htmlParseBudget:      8 * time.Second,
		hostMinInterval:      2 * time.Second,
		hostMaxWait:          20 * time.Second,
		frontierPopTimeout:   3 * time.Second,
		retryBudgetEmpties:   5,
		retryBudgetSleep:     2 * time.Second,
		outputDir:            "./data",
	}
}

func (c *Config) WithSeedFilePath(path string) *Config {
	c.seedFilePath = path
	return c
}

func (c *Config) WithNumSeeds(n int) *Config {
	c.numSeeds = n
	return c
}

func (c *Config) WithMaxPages(n int) *Config {
	c.maxPages = n
	return c
}

func (c *Config) WithNumThreads(n int) *Config {
	c.numThreads = n
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithConnectTimeout(d time.Duration) *Config {
	c.connectTimeout = d
	return c
}

func (c *Config) WithReadTimeout(d time.Duration) *Config {
	c.readTimeout = d
	return c
}

func (c *Config) WithRobotsConnectTimeout(d time.Duration) *Config {
	c.robotsConnectTimeout = d
	return c
}

func (c *Config) WithRobotsReadTimeout(d time.Duration) *Config {
	c.robotsReadTimeout = d
	return c
}

func (c *Config) WithHTMLParseBudget(d time.Duration) *Config {
	c.htmlParseBudget = d
	return c
}

func (c *Config) WithHostMinInterval(d time.Duration) *Config {
	c.hostMinInterval = d
	return c
}

func (c *Config) WithHostMaxWait(d time.Duration) *Config {
	c.hostMaxWait = d
	return c
}

func (c *Config) WithFrontierPopTimeout(d time.Duration) *Config {
	c.frontierPopTimeout = d
	return c
}

func (c *Config) WithRetryBudgetEmpties(n int) *Config {
	c.retryBudgetEmpties = n
	return c
}

func (c *Config) WithRetryBudgetSleep(d time.Duration) *Config {
	c.retryBudgetSleep = d
	return c
}

func (c *Config) WithOutputDir(dir string) *Config {
	c.outputDir = dir
	return c
}

// Build validates and freezes the config. It is the only way to obtain a
// usable Config value from a builder chain.
func (c *Config) Build() (Config, error) {
	if c.seedFilePath == "" {
		return Config{}, fmt.Errorf("%w: seedFilePath cannot be empty", ErrInvalidConfig)
	}
	if c.numSeeds <= 0 {
		return Config{}, fmt.Errorf("%w: numSeeds must be positive", ErrInvalidConfig)
	}
	if c.maxPages <= 0 {
		return Config{}, fmt.Errorf("%w: maxPages must be positive", ErrInvalidConfig)
	}
	if c.numThreads <= 0 {
		return Config{}, fmt.Errorf("%w: numThreads must be positive", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) SeedFilePath() string { return c.seedFilePath }
func (c Config) NumSeeds() int        { return c.numSeeds }
func (c Config) MaxPages() int        { return c.maxPages }
func (c Config) NumThreads() int      { return c.numThreads }
func (c Config) RandomSeed() int64    { return c.randomSeed }
func (c Config) UserAgent() string    { return c.userAgent }

func (c Config) ConnectTimeout() time.Duration       { return c.connectTimeout }
func (c Config) ReadTimeout() time.Duration          { return c.readTimeout }
func (c Config) RobotsConnectTimeout() time.Duration { return c.robotsConnectTimeout }
func (c Config) RobotsReadTimeout() time.Duration    { return c.robotsReadTimeout }
func (c Config) HTMLParseBudget() time.Duration      { return c.htmlParseBudget }
func (c Config) HostMinInterval() time.Duration      { return c.hostMinInterval }
func (c Config) HostMaxWait() time.Duration          { return c.hostMaxWait }
func (c Config) FrontierPopTimeout() time.Duration   { return c.frontierPopTimeout }
func (c Config) RetryBudgetEmpties() int             { return c.retryBudgetEmpties }
func (c Config) RetryBudgetSleep() time.Duration     { return c.retryBudgetSleep }
func (c Config) OutputDir() string                   { return c.outputDir }
