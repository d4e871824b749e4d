package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/config"
	"github.com/tbourn/go-waiter-catalog/internal/source"
	"github.com/tbourn/go-waiter-catalog/internal/sysutil"
)

var (
	searchFile      string
	searchStore     bool
	searchCategory  []string
	searchAllergens []string
	searchTags      []string
	searchLimit     int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the catalog from the command line",
	Long: "Loads the catalog without a server and prints the visible entries for a query and facet selection. " +
		"Without a query the entries are listed in collection order.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFile, "file", "", "Catalog JSON file (default CATALOG_FALLBACK_PATH)")
	f.BoolVar(&searchStore, "store", false, "Load from the configured database instead of a file")
	f.StringSliceVar(&searchCategory, "category", nil, "Category selection (any of)")
	f.StringSliceVar(&searchAllergens, "allergen", nil, "Allergen selection (all of)")
	f.StringSliceVar(&searchTags, "tag", nil, "Tag selection (all of)")
	f.IntVarP(&searchLimit, "limit", "n", 20, "Max entries to print (0 = all)")
	f.BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context(), cfg, searchFile, searchStore)
	if err != nil {
		return err
	}

	st := catalog.FilterState{
		Categories: catalog.NewSelection(searchCategory...),
		Allergens:  catalog.NewSelection(searchAllergens...),
		Tags:       catalog.NewSelection(searchTags...),
	}
	if len(args) == 1 {
		st = st.WithQuery(args[0])
	}
	v := cat.Query(st)

	if searchLimit > 0 && len(v.Entries) > searchLimit {
		v.Entries = v.Entries[:searchLimit]
	}
	if searchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	printView(cmd.OutOrStdout(), v)
	return nil
}

// loadCatalog builds an in-memory catalog from the store or from a JSON file.
func loadCatalog(ctx context.Context, cfg config.Config, file string, fromStore bool) (*catalog.Catalog, error) {
	opts, err := catalogOptions(cfg)
	if err != nil {
		return nil, err
	}

	var src source.Source
	if fromStore {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		defer closeDB(db)
		src = &source.DBSource{DB: db}
	} else {
		path := sysutil.FirstNonEmpty(file, cfg.Catalog.FallbackPath)
		if path == "" {
			return nil, fmt.Errorf("no catalog file: pass --file or set CATALOG_FALLBACK_PATH")
		}
		src = &source.FileSource{Path: path}
	}

	b, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(opts)
	cat.Load(b)
	return cat, nil
}

func printView(w io.Writer, v catalog.View) {
	for _, e := range v.Entries {
		line := e.ID + "\t" + e.Title
		if e.Category != "" {
			line += "\t[" + e.Category + "]"
		}
		if len(e.Allergens) > 0 {
			line += "\t!" + strings.Join(e.Allergens, ",")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d of %d shown\n", len(v.Entries), v.Count)
}

func printFacets(w io.Writer, fi catalog.FacetIndex) {
	section := func(name string, vals []catalog.FacetValue) {
		labels := make([]string, 0, len(vals))
		for _, fv := range vals {
			l := fmt.Sprintf("%s(%d)", fv.Label, fv.Count)
			if fv.Selected {
				l = "*" + l
			}
			labels = append(labels, l)
		}
		fmt.Fprintf(w, "%s: %s\n", name, strings.Join(labels, " "))
	}
	section("categories", fi.Categories)
	section("allergens", fi.Allergens)
	if len(fi.TagGroups) == 0 {
		section("tags", fi.Tags)
		return
	}
	for _, g := range fi.TagGroups {
		for _, s := range g.Sections {
			section(g.Name+"/"+s.Name, s.Values)
		}
	}
}
