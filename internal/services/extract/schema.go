package extract

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SchemaTypes collects schema.org types declared on the page via JSON-LD
// scripts and microdata itemtype attributes, deduplicated by type name.
func (d *ParsedDocument) SchemaTypes() []string {
	seen := make(map[string]bool)
	var types []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		// Microdata itemtype values are full schema.org URLs
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}

	d.Find(`script[type='application/ld+json']`).Each(func(_ int, sel *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return
		}
		collectJSONLDTypes(data, add)
	})

	d.Find("[itemtype]").Each(func(_ int, sel *goquery.Selection) {
		if itemtype, ok := sel.Attr("itemtype"); ok {
			add(itemtype)
		}
	})

	sort.Strings(types)
	return types
}

// collectJSONLDTypes walks a decoded JSON-LD value gathering @type entries,
// descending into arrays and @graph containers.
func collectJSONLDTypes(data interface{}, add func(string)) {
	switch v := data.(type) {
	case []interface{}:
		for _, entry := range v {
			collectJSONLDTypes(entry, add)
		}
	case map[string]interface{}:
		switch t := v["@type"].(type) {
		case string:
			add(t)
		case []interface{}:
			for _, entry := range t {
				if name, ok := entry.(string); ok {
					add(name)
				}
			}
		}
		if graph, ok := v["@graph"]; ok {
			collectJSONLDTypes(graph, add)
		}
	}
}

// jsonLDDate returns the first value of the named date field found in any
// JSON-LD block on the page.
func jsonLDDate(doc *ParsedDocument, field string) string {
	var result string
	doc.Find(`script[type='application/ld+json']`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}
		result = findJSONLDField(data, field)
		return result == ""
	})
	return result
}

// jsonLDAuthor returns the author name declared in JSON-LD, if any
func jsonLDAuthor(doc *ParsedDocument) string {
	var result string
	doc.Find(`script[type='application/ld+json']`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}
		result = findJSONLDAuthor(data)
		return result == ""
	})
	return result
}

func findJSONLDField(data interface{}, field string) string {
	switch v := data.(type) {
	case []interface{}:
		for _, entry := range v {
			if found := findJSONLDField(entry, field); found != "" {
				return found
			}
		}
	case map[string]interface{}:
		if value, ok := v[field].(string); ok && value != "" {
			return value
		}
		if graph, ok := v["@graph"]; ok {
			return findJSONLDField(graph, field)
		}
	}
	return ""
}

func findJSONLDAuthor(data interface{}) string {
	switch v := data.(type) {
	case []interface{}:
		for _, entry := range v {
			if found := findJSONLDAuthor(entry); found != "" {
				return found
			}
		}
	case map[string]interface{}:
		switch author := v["author"].(type) {
		case string:
			return author
		case map[string]interface{}:
			if name, ok := author["name"].(string); ok {
				return name
			}
		case []interface{}:
			for _, entry := range author {
				if m, ok := entry.(map[string]interface{}); ok {
					if name, ok := m["name"].(string); ok && name != "" {
						return name
					}
				}
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findJSONLDAuthor(graph)
		}
	}
	return ""
}
