package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
)

// configPaths allows the -config flag to be given multiple times; later
// files override earlier ones.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
	queryText   = flag.String("query", "", "Run a single query to completion and exit")
	analyzeURL  = flag.String("url", "", "Analyze a single URL and print the result as JSON")
	brandName   = flag.String("brand", "", "Tracked brand name for one-shot mode")
	brandDomain = flag.String("brand-domain", "", "Tracked brand domain for one-shot mode")
	platform    = flag.String("platform", "claude", "Platform label for one-shot mode")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Citare version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("citare.toml"); err == nil {
			configFiles = append(configFiles, "citare.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *serverPort, *serverHost)

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("llm_provider", config.LLM.Provider).
		Msg("Configuration loaded")

	if *analyzeURL != "" {
		os.Exit(runAnalyzeURL())
	}
	if *queryText != "" {
		os.Exit(runAnalyze())
	}

	os.Exit(runServe())
}
