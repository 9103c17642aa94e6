package product

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Cache keys are derived deterministically from the request parameters so
// that identical queries always address the same entry. Variable-length
// inputs (filter sets, search terms) are hashed to keep keys bounded.

const analyticsCacheKey = "analytics:summary"

// listKey addresses one page of a filtered listing. The filter digest is
// computed over the sorted k=v pairs so field order never matters.
func listKey(page, limit int, filters Filters) string {
	return fmt.Sprintf("list:page_%d_limit_%d_%s", page, limit, filterDigest(filters))
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func searchKey(query string, limit int) string {
	return "search:" + shortHash(query+"|"+strconv.Itoa(limit))
}

func lowStockKey(threshold int) string {
	return fmt.Sprintf("low_stock:%d", threshold)
}

// filterDigest canonicalizes the filter set. Absent fields are omitted so
// {category: "x"} and {category: "x", status: ""} hash identically.
func filterDigest(f Filters) string {
	pairs := make([]string, 0, 3)
	if f.Category != "" {
		pairs = append(pairs, "category="+f.Category)
	}
	if f.Status != "" {
		pairs = append(pairs, "status="+f.Status)
	}
	if f.MinStock != nil {
		pairs = append(pairs, "min_stock="+strconv.Itoa(*f.MinStock))
	}
	sort.Strings(pairs)
	return shortHash(strings.Join(pairs, "&"))
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
