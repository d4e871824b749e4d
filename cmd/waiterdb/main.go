// waiterdb serves the restaurant reference catalog: free-text search,
// facets and pairings over dishes, wines and bar items.
//
// @title       Waiter Catalog API
// @version     1.0
// @description Read API over the restaurant reference catalog: free-text search, facets and pairings.
// @BasePath    /api/v1
package main

import (
	"os"

	"github.com/tbourn/go-waiter-catalog/cmd/waiterdb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
