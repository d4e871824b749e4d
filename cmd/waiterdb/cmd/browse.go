package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
)

var (
	browseFile  string
	browseStore bool
	browseLimit int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive catalog lookup",
	Long: `Reads commands from stdin. A plain line sets the query, which is evaluated once typing settles.
  :category <value>   toggle a category (also :cat, :menu)
  :allergen <value>   toggle an allergen
  :tag <value>        toggle a tag
  :facets             show the facet index
  :clear              clear the query
  :quit               exit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	f := browseCmd.Flags()
	f.StringVar(&browseFile, "file", "", "Catalog JSON file (default CATALOG_FALLBACK_PATH)")
	f.BoolVar(&browseStore, "store", false, "Load from the configured database instead of a file")
	f.IntVarP(&browseLimit, "limit", "n", 10, "Max entries to print per view (0 = all)")
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context(), cfg, browseFile, browseStore)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var (
		mu   sync.Mutex
		last catalog.View
	)
	sess := catalog.NewSession(cat, cfg.Catalog.QueryDebounce, func(v catalog.View) {
		mu.Lock()
		defer mu.Unlock()
		last = v
		if browseLimit > 0 && len(v.Entries) > browseLimit {
			v.Entries = v.Entries[:browseLimit]
		}
		printView(out, v)
	})
	defer sess.Close()
	sess.Refresh()
	// A query still waiting out the debounce is shown before exit.
	defer sess.Flush()

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, ":") {
			sess.SetQuery(line)
			continue
		}
		name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "quit", "q":
			return nil
		case "clear":
			sess.SetQuery("")
		case "facets":
			mu.Lock()
			printFacets(out, last.Facets)
			mu.Unlock()
		default:
			kind, ok := catalog.ParseFacetKind(name)
			if !ok || arg == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown command %q\n", line)
				continue
			}
			sess.Toggle(kind, arg)
		}
	}
	return sc.Err()
}
