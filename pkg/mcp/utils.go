package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func stringArg(req mcp.CallToolRequest, name string) (string, bool) {
	s, ok := req.Params.Arguments[name].(string)
	return s, ok && s != ""
}

func boolArg(req mcp.CallToolRequest, name string) (bool, bool) {
	b, ok := req.Params.Arguments[name].(bool)
	return b, ok
}

// numberArg accepts JSON numbers (float64) as well as integers set by Go callers.
func numberArg(req mcp.CallToolRequest, name string) (float64, bool) {
	switch v := req.Params.Arguments[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func requiredString(req mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	s, ok := stringArg(req, name)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	return s, nil
}

// jsonResult serializes v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
