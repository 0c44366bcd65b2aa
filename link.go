package wayback

import (
	"net/http"
	"strings"
)

// parseLinkHeader parses an RFC 5988 Link header value into a map keyed by
// relation name, retaining only the relations the client understands
// (§6): original, timemap, memento, first/prev/next/last memento.
func parseLinkHeader(value string) map[string]Link {
	result := make(map[string]Link)
	if value == "" {
		return result
	}

	for _, entry := range splitLinkEntries(value) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		urlPart, params, ok := splitLinkEntry(entry)
		if !ok {
			continue
		}

		link := Link{URL: urlPart}
		rel := ""
		for key, val := range params {
			switch key {
			case "rel":
				rel = val
			case "datetime":
				if t, err := http.ParseTime(val); err == nil {
					link.Datetime = t.UTC()
					link.HasDatetime = true
				}
			}
		}
		if rel == "" || !wellKnownLinkRelations[rel] {
			continue
		}
		link.Rel = rel
		result[rel] = link
	}

	return result
}

// splitLinkEntries splits a Link header value on commas that separate
// distinct link-values, being careful not to split on commas inside a
// quoted parameter value.
func splitLinkEntries(value string) []string {
	var entries []string
	var current strings.Builder
	inQuotes := false
	for _, r := range value {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			entries = append(entries, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		entries = append(entries, current.String())
	}
	return entries
}

// splitLinkEntry splits a single link-value ("<url>; rel=\"x\"; ...") into
// its URL and parameter map.
func splitLinkEntry(entry string) (string, map[string]string, bool) {
	start := strings.Index(entry, "<")
	end := strings.Index(entry, ">")
	if start == -1 || end == -1 || end < start {
		return "", nil, false
	}
	url := entry[start+1 : end]

	params := make(map[string]string)
	rest := entry[end+1:]
	for _, rawParam := range strings.Split(rest, ";") {
		rawParam = strings.TrimSpace(rawParam)
		if rawParam == "" {
			continue
		}
		eq := strings.Index(rawParam, "=")
		if eq == -1 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(rawParam[:eq]))
		val := strings.TrimSpace(rawParam[eq+1:])
		val = strings.Trim(val, `"`)
		params[key] = val
	}

	return url, params, true
}
