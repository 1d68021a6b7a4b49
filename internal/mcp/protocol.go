// Package mcp serves the cost calculators as Model Context Protocol tools.
//
// DESIGN: A JSON-RPC 2.0 dispatcher with three transports:
//   - stdio:     newline-delimited messages (ServeStdio)
//   - HTTP:      one message per POST (HTTPHandler)
//   - WebSocket: one message per frame (WebSocketHandler)
//
// Envelopes are read with gjson and responses assembled with sjson, so the
// request id is echoed back byte for byte whatever its JSON type.
package mcp

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Protocol identification.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "travel-cost-predictor"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Methods.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// request is a parsed JSON-RPC envelope. id holds the raw JSON of the id
// member and is empty for notifications.
type request struct {
	id     string
	method string
	params gjson.Result
}

func parseRequest(data []byte) (*request, *RPCError) {
	if !gjson.ValidBytes(data) {
		return nil, &RPCError{Code: CodeParseError, Message: "Parse error"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &RPCError{Code: CodeInvalidRequest, Message: "Invalid Request: expected a JSON object"}
	}
	if root.Get("jsonrpc").String() != "2.0" {
		return nil, &RPCError{Code: CodeInvalidRequest, Message: `Invalid Request: jsonrpc must be "2.0"`}
	}
	method := root.Get("method")
	if method.Type != gjson.String || method.String() == "" {
		return nil, &RPCError{Code: CodeInvalidRequest, Message: "Invalid Request: method is required"}
	}
	return &request{
		id:     root.Get("id").Raw,
		method: method.String(),
		params: root.Get("params"),
	}, nil
}

// requestID extracts a raw id from a message that failed validation, so the
// error response can still be correlated when possible.
func requestID(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	return gjson.GetBytes(data, "id").Raw
}

func envelope(id string) []byte {
	if id == "" {
		id = "null"
	}
	out, _ := sjson.SetRawBytes([]byte(`{"jsonrpc":"2.0"}`), "id", []byte(id))
	return out
}

func resultResponse(id string, result any) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(envelope(id), "result", raw)
}

func errorResponse(id string, rpcErr *RPCError) []byte {
	raw, err := json.Marshal(rpcErr)
	if err != nil {
		raw = []byte(`{"code":-32603,"message":"Internal error"}`)
	}
	out, _ := sjson.SetRawBytes(envelope(id), "error", raw)
	return out
}
