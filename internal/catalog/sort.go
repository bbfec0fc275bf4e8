package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog titles are Indonesian, so tie-breaks use Indonesian collation
// rather than byte order.
var titleCollator = collate.New(language.Indonesian)

// SortProducts orders products for display: order_number ascending,
// ties broken by title. Stable so equal rows keep backend order.
func SortProducts(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].OrderNumber != products[j].OrderNumber {
			return products[i].OrderNumber < products[j].OrderNumber
		}
		return titleCollator.CompareString(products[i].Judul, products[j].Judul) < 0
	})
}
