package main

// CLI is the flag surface. Exactly one mode flag picks what the process
// does; everything else tunes it.
type CLI struct {
	Webcrawler        bool   `short:"w" xor:"mode" help:"Run a pool of crawler workers."`
	Indexer           bool   `short:"i" xor:"mode" help:"Run a pool of indexer workers draining the page cache."`
	Optimizer         bool   `short:"o" xor:"mode" help:"Run the index optimizer loop."`
	Rebooster         bool   `short:"r" aliases:"rb" xor:"mode" help:"Run a single reboost pass over the main collection."`
	Deltamerge        bool   `short:"d" aliases:"dm" xor:"mode" help:"Promote finished working documents into the main collection."`
	Webcrawlermanager bool   `short:"m" aliases:"wm" xor:"mode" help:"Run the frontier lock server."`
	Scanner           string `short:"s" xor:"mode" placeholder:"ptr|axfr" help:"Not supported in this build."`
	Exploit           bool   `short:"e" xor:"mode" help:"Not supported in this build."`
	Seed              string `xor:"mode" placeholder:"URL" help:"Seed the frontier from a site's sitemaps and exit."`

	Processes int     `short:"p" default:"10" help:"Number of workers in the pool."`
	Host      string  `default:"127.0.0.1" help:"Frontier lock server host."`
	Port      int     `default:"4643" help:"Frontier lock server port."`
	AuthKey   string  `name:"authkey" default:"a" help:"Shared key for the lock server handshake."`
	Rate      float64 `default:"1" help:"Per-host crawl requests per second."`

	WorkingURLs []string `name:"working-url" env:"OSSEARCH_WORKING_URLS" help:"Solr node URLs for the working collection."`
	MainURLs    []string `name:"main-url" env:"OSSEARCH_MAIN_URLS" help:"Solr node URLs for the main collection."`
	CacheDB     string   `name:"cache-db" default:"ossearch-cache.db" help:"Page cache database path."`

	LogFile string `name:"log-file" env:"OSSEARCH_LOG_FILE" default:"ossearch.log" help:"Log file path."`
	Debug   bool   `help:"Enable debug logging."`
}
