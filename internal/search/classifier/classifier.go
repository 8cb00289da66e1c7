// Package classifier turns raw upstream response bytes into exactly one
// of success, upstream business error, or parse failure. It is a pure
// function of the bytes: no network, no auth, no state.
package classifier

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// RawPrefixLimit bounds the diagnostic excerpt attached to parse
// failures. Never the full body: it keeps log volume sane and avoids
// leaking oversized or binary payloads.
const RawPrefixLimit = 500

// Kind tags the classification variant.
type Kind int

const (
	KindSuccess Kind = iota
	KindUpstreamError
	KindParseFailure
)

// Result is the classified outcome of one completed upstream exchange.
// Exactly one variant's fields are meaningful, selected by Kind.
type Result struct {
	Kind Kind

	// KindSuccess
	TransactionID string
	RecordsFound  int
	Payload       map[string]any

	// KindUpstreamError; code and message verbatim from upstream
	ErrorCode    string
	ErrorMessage string

	// KindParseFailure
	RawPrefix string
}

// resultElement is the local name of the search-result node. The
// decoder finds it anywhere under the envelope, so namespace prefixes
// and wrapper differences don't matter.
const resultElement = "SearchResult"

// Classify parses body leniently and navigates to the search result.
// A missing result node, undecodable XML, an empty body, or a
// non-numeric record count all classify as parse failure. An ErrorCode
// other than "0" (including an absent code) is an upstream business
// error.
func Classify(body []byte) Result {
	if len(bytes.TrimSpace(body)) == 0 {
		return parseFailure(body)
	}

	m, err := mxj.NewMapXml(body)
	if err != nil {
		return parseFailure(body)
	}

	result, ok := findElement(map[string]any(m), resultElement)
	if !ok {
		return parseFailure(body)
	}

	code, _ := scalar(result, "ErrorCode")
	if code != "0" {
		message, _ := scalar(result, "ErrorMessage")
		return Result{Kind: KindUpstreamError, ErrorCode: code, ErrorMessage: message}
	}

	records, ok := scalar(result, "NumberOfRecordsFound")
	if !ok {
		return parseFailure(body)
	}
	count, err := strconv.Atoi(strings.TrimSpace(records))
	if err != nil {
		return parseFailure(body)
	}

	transactionID, _ := scalar(result, "TransactionId")
	return Result{
		Kind:          KindSuccess,
		TransactionID: transactionID,
		RecordsFound:  count,
		Payload:       result,
	}
}

func parseFailure(body []byte) Result {
	prefix := string(body)
	if len(prefix) > RawPrefixLimit {
		prefix = prefix[:RawPrefixLimit]
	}
	return Result{Kind: KindParseFailure, RawPrefix: prefix}
}

// findElement walks the decoded tree depth-first and returns the first
// element map whose key matches local (namespace prefixes stripped).
func findElement(node map[string]any, local string) (map[string]any, bool) {
	for key, value := range node {
		if localName(key) == local {
			switch v := value.(type) {
			case map[string]any:
				return v, true
			case []any:
				// Repeated result nodes: the first one wins.
				for _, item := range v {
					if m, ok := item.(map[string]any); ok {
						return m, true
					}
				}
			}
			continue
		}
		switch child := value.(type) {
		case map[string]any:
			if m, ok := findElement(child, local); ok {
				return m, true
			}
		case []any:
			for _, item := range child {
				if m, ok := item.(map[string]any); ok {
					if found, ok := findElement(m, local); ok {
						return found, true
					}
				}
			}
		}
	}
	return nil, false
}

// scalar extracts a text child of node by local name. The decoder
// collapses single-child elements to strings; elements carrying
// attributes keep their text under "#text".
func scalar(node map[string]any, local string) (string, bool) {
	for key, value := range node {
		if localName(key) != local {
			continue
		}
		switch v := value.(type) {
		case string:
			return v, true
		case map[string]any:
			if text, ok := v["#text"].(string); ok {
				return text, true
			}
		}
		return "", false
	}
	return "", false
}

func localName(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}
