package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrun/tool"
)

// searchCorpus holds the canned results keyed by topic. A query matches a
// topic when it contains the key as a substring, case-insensitively.
var searchCorpus = map[string]string{
	"climate change": "Climate change refers to long-term shifts in global temperatures and weather patterns. " +
		"Since the 1800s, human activities, primarily burning fossil fuels, have been the main driver. " +
		"Key impacts include rising sea levels, more frequent extreme weather events, and ecosystem disruption.",
	"go programming": "Go is a statically typed, compiled programming language designed at Google. " +
		"Known for fast builds, a small language surface and first-class concurrency via goroutines and channels. " +
		"Widely used for network services, infrastructure tooling and cloud systems.",
	"anthropic claude": "Anthropic is an AI safety company that develops Claude, a family of AI assistants. " +
		"Claude is designed to be helpful, harmless, and honest.",
}

// NewSearchWebTool returns the search_web tool. It simulates a web search
// against a small canned corpus; swap in a real search API for production.
func NewSearchWebTool() *tool.FunctionTool {
	return tool.NewFunctionTool(
		"search_web",
		"Search the web for information on a given topic.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query, e.g. 'climate change causes'.",
				},
			},
			"required": []string{"query"},
		},
		func(_ context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			return SearchWeb(query), nil
		},
	)
}

// SearchWeb looks the query up in the canned corpus.
func SearchWeb(query string) string {
	lower := strings.ToLower(query)
	for key, result := range searchCorpus {
		if strings.Contains(lower, key) {
			return result
		}
	}
	return fmt.Sprintf("Search results for '%s': No specific results found. Try a more specific query.", query)
}
