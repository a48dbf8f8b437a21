package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gamma-omg/graphrag-mcp/config"
	"github.com/gamma-omg/graphrag-mcp/graph"
)

// clearCache drops the retriever cache of the index named in the config.
// Failures are not handled here: the operator wants the stack trace and a
// non-zero exit, not a softened error message.
func clearCache(out io.Writer, cfgPath string) {
	fmt.Fprintln(out, "Clearing retriever cache...")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	idx, err := graph.Open(cfg.IndexPath)
	if err != nil {
		panic(err)
	}
	defer idx.Close()

	if err := idx.ClearRetrieverCache(); err != nil {
		panic(err)
	}

	fmt.Fprintln(out, "✓ Retriever cache cleared successfully")
	fmt.Fprintln(out, "Cached query results will be rebuilt on the next retrieval.")
}

func main() {
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file of the MCP server")
	flag.Parse()

	clearCache(os.Stdout, *cfgPath)
}
