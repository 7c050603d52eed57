package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/briefcasebrain/uir-gateway/request"
)

// vectorDimsHashed is the number of leading vector dimensions hashed into
// a vector-search cache key, matching the source's request.vector[:10].
// Vectors differing only past the 10th dimension collide; this is an
// intentionally retained quirk, not a bug.
const vectorDimsHashed = 10

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func providerPart(providers []string) string {
	sorted := append([]string(nil), providers...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func optionsPart(opts request.SearchOptions) string {
	data, err := json.Marshal(opts)
	if err != nil {
		return ""
	}
	return md5Hex(string(data))[:8]
}

// SearchKey builds the cache key for a text search request, matching
// _generate_cache_key's SearchRequest branch.
func SearchKey(providers []string, query string, opts request.SearchOptions) string {
	if opts.Cache != nil && opts.Cache.Key != "" {
		return "uir:custom:" + opts.Cache.Key
	}
	parts := []string{providerPart(providers), md5Hex(query), optionsPart(opts)}
	return "uir:v1:" + strings.Join(parts, ":")
}

// VectorKey builds the cache key for a vector search request, hashing
// text if present, otherwise the first vectorDimsHashed dimensions of the
// vector, matching _generate_cache_key's VectorSearchRequest branch.
func VectorKey(providers []string, vector []float32, text string, opts request.SearchOptions) string {
	if opts.Cache != nil && opts.Cache.Key != "" {
		return "uir:custom:" + opts.Cache.Key
	}
	var contentPart string
	if text != "" {
		contentPart = md5Hex(text)
	} else {
		n := vectorDimsHashed
		if n > len(vector) {
			n = len(vector)
		}
		dims := make([]string, n)
		for i := 0; i < n; i++ {
			dims[i] = strconv.FormatFloat(float64(vector[i]), 'g', -1, 32)
		}
		contentPart = md5Hex(strings.Join(dims, ","))
	}
	parts := []string{providerPart(providers), contentPart, optionsPart(opts)}
	return "uir:v1:" + strings.Join(parts, ":")
}

// HybridKey builds the cache key for a hybrid search request, reusing the
// same provider/query/options shape as SearchKey under a distinct prefix
// so hybrid and plain-text results never collide.
func HybridKey(providers []string, query string, opts request.SearchOptions) string {
	if opts.Cache != nil && opts.Cache.Key != "" {
		return "uir:custom:" + opts.Cache.Key
	}
	parts := []string{providerPart(providers), md5Hex(query), optionsPart(opts)}
	return fmt.Sprintf("uir:v1:hybrid:%s", strings.Join(parts, ":"))
}
