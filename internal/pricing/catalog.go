package pricing

import (
	"strconv"
	"strings"

	"umkmorder/internal/entity"
)

// DefaultPackages is the catalog offered when none is configured.
func DefaultPackages() []entity.EndorsementPackage {
	return []entity.EndorsementPackage{
		{Value: "basic", Label: "Basic Post", Price: 500000, Description: "1 Instagram post + story"},
		{Value: "premium", Label: "Premium Package", Price: 1000000, Description: "2 posts + 3 stories + reel"},
		{Value: "deluxe", Label: "Deluxe Campaign", Price: 2000000, Description: "3 posts + 5 stories + 2 reels"},
		{Value: "ultimate", Label: "Ultimate Package", Price: 5000000, Description: "Full month campaign with multiple content"},
	}
}

// Catalog is an immutable set of endorsement packages keyed by value.
type Catalog struct {
	packages []entity.EndorsementPackage
	byValue  map[string]entity.EndorsementPackage
}

// NewCatalog keeps the first package for each value. An empty list yields
// the default catalog.
func NewCatalog(packages []entity.EndorsementPackage) *Catalog {
	if len(packages) == 0 {
		packages = DefaultPackages()
	}

	c := &Catalog{
		packages: make([]entity.EndorsementPackage, 0, len(packages)),
		byValue:  make(map[string]entity.EndorsementPackage, len(packages)),
	}
	for _, p := range packages {
		if _, ok := c.byValue[p.Value]; ok {
			continue
		}
		c.byValue[p.Value] = p
		c.packages = append(c.packages, p)
	}
	return c
}

func (c *Catalog) Packages() []entity.EndorsementPackage {
	out := make([]entity.EndorsementPackage, len(c.packages))
	copy(out, c.packages)
	return out
}

func (c *Catalog) Lookup(value string) (entity.EndorsementPackage, bool) {
	p, ok := c.byValue[value]
	return p, ok
}

// PriceFor returns the package price, or 0 for a value not in the catalog.
func (c *Catalog) PriceFor(value string) int64 {
	return c.byValue[value].Price
}

// Label returns the package label, or the raw value when unknown.
func (c *Catalog) Label(value string) string {
	if p, ok := c.byValue[value]; ok {
		return p.Label
	}
	return value
}

// Reprice sets every product price from the catalog.
func (c *Catalog) Reprice(products []entity.OrderProduct) {
	for i := range products {
		products[i].Price = c.PriceFor(products[i].EndorsementType)
	}
}

func RecomputeTotal(products []entity.OrderProduct) int64 {
	var total int64
	for _, p := range products {
		total += p.Price
	}
	return total
}

// FormatAmount renders an amount with Indonesian thousands separators,
// e.g. 1500000 -> "1.500.000".
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
