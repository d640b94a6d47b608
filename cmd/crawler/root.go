package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile            string
	seedFilePath       string
	numSeeds           int
	maxPages           int
	numThreads         int
	randomSeed         int64
	userAgent          string
	connectTimeout     time.Duration
	readTimeout        time.Duration
	robotsConnTimeout  time.Duration
	robotsReadTimeout  time.Duration
	htmlParseBudget    time.Duration
	hostMinInterval    time.Duration
	hostMaxWait        time.Duration
	frontierPopTimeout time.Duration
	retryBudgetEmpties int
	retryBudgetSleep   time.Duration
	outputDir          string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "A polite, priority-driven crawler restricted to .nz domains.",
	Long: `crawler is a CLI application that performs a breadth-first, priority-ordered
crawl of New Zealand-domain web pages, respecting robots.txt and per-host
rate limits, and writes a report of the visit.`,
}

// crawlCmd runs one full crawl to completion and writes its report.
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a crawl from a seed file to completion.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFilePath == "" {
			return fmt.Errorf("--seed-file is required")
		}
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		return runCrawl(cfg)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main and only needs to run once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&seedFilePath, "seed-file", "", "path to the seed URL file, one URL per line")
	rootCmd.PersistentFlags().IntVar(&numSeeds, "num-seeds", 0, "number of seeds to sample from the seed file")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to visit")
	rootCmd.PersistentFlags().IntVar(&numThreads, "num-threads", 0, "number of concurrent crawl workers")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string presented to every host")
	rootCmd.PersistentFlags().DurationVar(&connectTimeout, "connect-timeout", 0, "TCP connect timeout for page fetches")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", 0, "read timeout for page fetches")
	rootCmd.PersistentFlags().DurationVar(&robotsConnTimeout, "robots-connect-timeout", 0, "TCP connect timeout for robots.txt fetches")
	rootCmd.PersistentFlags().DurationVar(&robotsReadTimeout, "robots-read-timeout", 0, "read timeout for robots.txt fetches")
	rootCmd.PersistentFlags().DurationVar(&htmlParseBudget, "html-parse-budget", 0, "wall-clock budget for parsing a fetched HTML body")
	rootCmd.PersistentFlags().DurationVar(&hostMinInterval, "host-min-interval", 0, "minimum spacing between fetches against the same host")
	rootCmd.PersistentFlags().DurationVar(&hostMaxWait, "host-max-wait", 0, "ceiling on cumulative wait for a host rate-limit acquire")
	rootCmd.PersistentFlags().DurationVar(&frontierPopTimeout, "frontier-pop-timeout", 0, "how long a worker blocks on an empty frontier pop")
	rootCmd.PersistentFlags().IntVar(&retryBudgetEmpties, "retry-budget-empties", 0, "consecutive empty pops that trigger worker exit")
	rootCmd.PersistentFlags().DurationVar(&retryBudgetSleep, "retry-budget-sleep", 0, "sleep between empty-pop retries")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory the crawl report is written into")
}

// InitConfigWithError builds a Config from flags or a config file, returning
// any error instead of exiting. Exposed separately to make error paths
// testable.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if seedFilePath == "" {
		return config.Config{}, fmt.Errorf("%w: seedFilePath cannot be empty", config.ErrInvalidConfig)
	}

	builder := config.WithDefault(seedFilePath)

	if numSeeds > 0 {
		builder = builder.WithNumSeeds(numSeeds)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if numThreads > 0 {
		builder = builder.WithNumThreads(numThreads)
	}
	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if connectTimeout > 0 {
		builder = builder.WithConnectTimeout(connectTimeout)
	}
	if readTimeout > 0 {
		builder = builder.WithReadTimeout(readTimeout)
	}
	if robotsConnTimeout > 0 {
		builder = builder.WithRobotsConnectTimeout(robotsConnTimeout)
	}
	if robotsReadTimeout > 0 {
		builder = builder.WithRobotsReadTimeout(robotsReadTimeout)
	}
	if htmlParseBudget > 0 {
		builder = builder.WithHTMLParseBudget(htmlParseBudget)
	}
	if hostMinInterval > 0 {
		builder = builder.WithHostMinInterval(hostMinInterval)
	}
	if hostMaxWait > 0 {
		builder = builder.WithHostMaxWait(hostMaxWait)
	}
	if frontierPopTimeout > 0 {
		builder = builder.WithFrontierPopTimeout(frontierPopTimeout)
	}
	if retryBudgetEmpties > 0 {
		builder = builder.WithRetryBudgetEmpties(retryBudgetEmpties)
	}
	if retryBudgetSleep > 0 {
		builder = builder.WithRetryBudgetSleep(retryBudgetSleep)
	}
	if outputDir != "" {
		builder = builder.WithOutputDir(outputDir)
	}

	return builder.Build()
}

// ResetFlags restores every package-level flag variable to its zero value.
// Used between test cases so flag state does not leak across tests.
func ResetFlags() {
	cfgFile = ""
	seedFilePath = ""
	numSeeds = 0
	maxPages = 0
	numThreads = 0
	randomSeed = 0
	userAgent = ""
	connectTimeout = 0
	readTimeout = 0
	robotsConnTimeout = 0
	robotsReadTimeout = 0
	htmlParseBudget = 0
	hostMinInterval = 0
	hostMaxWait = 0
	frontierPopTimeout = 0
	retryBudgetEmpties = 0
	retryBudgetSleep = 0
	outputDir = ""
}
