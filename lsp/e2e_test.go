// Copyright © 2024 The ELPS authors

package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonRPCRequest builds a JSON-RPC 2.0 request.
func jsonRPCRequest(id int, method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// jsonRPCNotification builds a JSON-RPC 2.0 notification (no id).
func jsonRPCNotification(method string, params any) []byte {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	b, _ := json.Marshal(msg)
	return b
}

// lspMessage wraps JSON content with the LSP Content-Length header.
func lspMessage(content []byte) []byte {
	return fmt.Appendf(nil, "Content-Length: %d\r\n\r\n%s", len(content), content)
}

// readLSPMessage reads a single LSP message from a buffered reader.
// Returns the parsed JSON as a map.
func readLSPMessage(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()

	// Read headers until blank line.
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read LSP header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if val, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(val)
			require.NoError(t, err, "parsing Content-Length")
			contentLength = n
		}
	}
	require.Greater(t, contentLength, 0, "Content-Length must be positive")

	// Read content body.
	body := make([]byte, contentLength)
	_, err := io.ReadFull(r, body)
	require.NoError(t, err, "reading message body")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg), "parsing JSON body")
	return msg
}

// readResponse reads LSP messages until a response with the given id appears.
// Returns the response and any notifications received along the way.
func readResponse(t *testing.T, r *bufio.Reader, id int) (map[string]any, []map[string]any) {
	t.Helper()
	var notifications []map[string]any
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for response id=%d", id)
		default:
		}
		msg := readLSPMessage(t, r)
		// If this message has the expected id, it's our response.
		if msgID, ok := msg["id"]; ok {
			var msgIDFloat float64
			switch v := msgID.(type) {
			case float64:
				msgIDFloat = v
			case json.Number:
				f, _ := v.Float64()
				msgIDFloat = f
			}
			if int(msgIDFloat) == id {
				return msg, notifications
			}
		}
		// Otherwise it's a notification (no id, or different id).
		notifications = append(notifications, msg)
	}
}

// e2eServer starts an LSP server on a random TCP port and returns the
// connection and a cleanup function.
func e2eServer(t *testing.T) (net.Conn, func()) {
	t.Helper()

	srv := New()
	srv.exitFn = func(int) {}

	// Find a free port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	_ = listener.Close()

	// Start the server in the background.
	done := make(chan error, 1)
	go func() {
		done <- srv.RunTCP(addr)
	}()

	// Give server a moment to start listening, then connect.
	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err, "failed to connect to LSP server at %s", addr)

	cleanup := func() {
		_ = conn.Close()
	}

	return conn, cleanup
}

// send writes an LSP message to the connection.
func send(t *testing.T, conn net.Conn, data []byte) {
	t.Helper()
	_, err := conn.Write(lspMessage(data))
	require.NoError(t, err, "writing LSP message")
}

func TestE2E_FullLifecycle(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)

	testURI := "file:///tmp/e2e-test/app.bind.yaml"

	// --- Step 1: Initialize ---
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
		"rootUri":      "file:///tmp/e2e-test",
	}))

	resp, _ := readResponse(t, reader, 1)
	result := resp["result"].(map[string]any)
	caps := result["capabilities"].(map[string]any)

	// Verify key capabilities.
	assert.NotNil(t, caps["hoverProvider"], "should have hover")
	assert.NotNil(t, caps["definitionProvider"], "should have definition")
	assert.NotNil(t, caps["referencesProvider"], "should have references")
	assert.NotNil(t, caps["documentSymbolProvider"], "should have document symbols")
	assert.NotNil(t, caps["signatureHelpProvider"], "should have signature help")
	assert.NotNil(t, caps["completionProvider"], "should have completion")

	serverInfo := result["serverInfo"].(map[string]any)
	assert.Equal(t, "sembind-lsp", serverInfo["name"])

	// --- Step 2: Initialized ---
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))

	// --- Step 3: Open document ---
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "yaml",
			"version":    1,
			"text":       testDecls,
		},
	}))

	// --- Step 4: Hover on "Scale" in w.Scale(2) ---
	send(t, conn, jsonRPCRequest(2, "textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 18, "character": 40},
	}))

	hoverResp, notes := readResponse(t, reader, 2)
	require.NotNil(t, hoverResp["result"], "hover should return a result")
	hoverResult := hoverResp["result"].(map[string]any)
	hoverContents := hoverResult["contents"].(map[string]any)
	hoverValue := hoverContents["value"].(string)
	assert.Contains(t, hoverValue, "Scale", "hover should mention the method name")
	assert.Contains(t, hoverValue, "method", "hover should show kind")
	assert.Contains(t, hoverValue, "Grows the widget.", "hover should show doc")

	// didOpen publishes before the hover is answered.
	var published bool
	for _, n := range notes {
		if n["method"] == "textDocument/publishDiagnostics" {
			published = true
		}
	}
	assert.True(t, published, "diagnostics should be published on open")

	// --- Step 5: Go to Definition on "Scale" ---
	send(t, conn, jsonRPCRequest(3, "textDocument/definition", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 18, "character": 40},
	}))

	defResp, _ := readResponse(t, reader, 3)
	require.NotNil(t, defResp["result"], "definition should return a result")
	defResult := defResp["result"].(map[string]any)
	assert.Equal(t, testURI, defResult["uri"])
	defRange := defResult["range"].(map[string]any)
	defStart := defRange["start"].(map[string]any)
	assert.Equal(t, float64(8), defStart["line"], "definition should point to the member declaration")
	assert.Equal(t, float64(33), defStart["character"])

	// --- Step 6: Document Symbols ---
	send(t, conn, jsonRPCRequest(4, "textDocument/documentSymbol", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))

	symResp, _ := readResponse(t, reader, 4)
	require.NotNil(t, symResp["result"], "document symbols should return a result")
	syms := symResp["result"].([]any)

	var symNames []string
	for _, s := range syms {
		sym := s.(map[string]any)
		symNames = append(symNames, sym["name"].(string))
	}
	assert.Contains(t, symNames, "main")
	assert.Contains(t, symNames, "grow")
	assert.Contains(t, symNames, "lossy")

	// --- Step 7: Signature help inside w.Scale(2) ---
	send(t, conn, jsonRPCRequest(5, "textDocument/signatureHelp", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 18, "character": 45},
	}))

	sigResp, _ := readResponse(t, reader, 5)
	require.NotNil(t, sigResp["result"], "signature help should return a result")
	sigs := sigResp["result"].(map[string]any)["signatures"].([]any)
	assert.Len(t, sigs, 2, "both overloads of Scale should be listed")

	// --- Step 8: References for the local w ---
	send(t, conn, jsonRPCRequest(6, "textDocument/references", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 14, "character": 15},
		"context":      map[string]any{"includeDeclaration": true},
	}))

	refsResp, _ := readResponse(t, reader, 6)
	require.NotNil(t, refsResp["result"], "references should return a result")
	refs := refsResp["result"].([]any)
	assert.GreaterOrEqual(t, len(refs), 2, "should find the declaration and at least one use")

	// --- Step 9: Change document ---
	send(t, conn, jsonRPCNotification("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "version": 2},
		"contentChanges": []any{
			map[string]any{"text": "module: app\nexpressions:\n  - {name: sum, text: \"1 + 2\"}\n"},
		},
	}))

	// Wait for debounce.
	time.Sleep(500 * time.Millisecond)

	send(t, conn, jsonRPCRequest(7, "textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 2, "character": 25},
	}))

	exprHoverResp, _ := readResponse(t, reader, 7)
	require.NotNil(t, exprHoverResp["result"], "hover on an expression should return a result")
	exprContents := exprHoverResp["result"].(map[string]any)["contents"].(map[string]any)
	assert.Contains(t, exprContents["value"].(string), "int")

	// --- Step 10: Close document ---
	send(t, conn, jsonRPCNotification("textDocument/didClose", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
	}))

	// --- Step 11: Shutdown ---
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))

	shutdownResp, _ := readResponse(t, reader, 99)
	// Shutdown should return null result.
	assert.Nil(t, shutdownResp["error"], "shutdown should not error")

	// --- Step 12: Exit ---
	send(t, conn, jsonRPCNotification("exit", nil))
}

// waitDiagnostics reads messages until a publishDiagnostics notification
// arrives.
func waitDiagnostics(t *testing.T, reader *bufio.Reader) map[string]any {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for diagnostics notification")
		default:
		}
		msg := readLSPMessage(t, reader)
		if method, ok := msg["method"].(string); ok && method == "textDocument/publishDiagnostics" {
			return msg["params"].(map[string]any)
		}
	}
}

func TestE2E_DiagnosticsPublishedOnOpen(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-diag/app.bind.yaml"

	// Initialize.
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
	}))
	readResponse(t, reader, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))

	// Open a document with an expression that does not parse.
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "yaml",
			"version":    1,
			"text":       "module: app\nexpressions:\n  - {name: broken, text: \"(1 +\"}\n",
		},
	}))

	diagParams := waitDiagnostics(t, reader)
	assert.Equal(t, testURI, diagParams["uri"])
	diags := diagParams["diagnostics"].([]any)
	require.NotEmpty(t, diags, "syntax error should produce diagnostics")

	var foundError bool
	for _, d := range diags {
		diag := d.(map[string]any)
		if sev, ok := diag["severity"].(float64); ok && sev == 1 { // 1 = Error
			foundError = true
			assert.Equal(t, "B7001", diag["code"])
		}
	}
	assert.True(t, foundError, "should have at least one error diagnostic")

	// Cleanup.
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	readResponse(t, reader, 99)
	send(t, conn, jsonRPCNotification("exit", nil))
}

func TestE2E_LintDiagnostics(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-lint/app.bind.yaml"

	// Initialize.
	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
	}))
	readResponse(t, reader, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))

	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "yaml",
			"version":    1,
			"text":       testDecls,
		},
	}))

	diags := waitDiagnostics(t, reader)["diagnostics"].([]any)
	require.NotEmpty(t, diags, "lint issues should produce diagnostics")

	var foundLint bool
	for _, d := range diags {
		diag := d.(map[string]any)
		if source, ok := diag["source"].(string); ok && source == "sembind-lint" {
			foundLint = true
			assert.Equal(t, "lossy-numeric-conversion", diag["code"])
		}
	}
	assert.True(t, foundLint, "should have at least one lint diagnostic")

	// Cleanup.
	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	readResponse(t, reader, 99)
	send(t, conn, jsonRPCNotification("exit", nil))
}

func TestE2E_HoverOnWhitespace(t *testing.T) {
	conn, cleanup := e2eServer(t)
	defer cleanup()

	reader := bufio.NewReader(conn)
	testURI := "file:///tmp/e2e-ws/app.bind.yaml"

	send(t, conn, jsonRPCRequest(1, "initialize", map[string]any{
		"capabilities": map[string]any{},
	}))
	readResponse(t, reader, 1)
	send(t, conn, jsonRPCNotification("initialized", map[string]any{}))
	send(t, conn, jsonRPCNotification("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        testURI,
			"languageId": "yaml",
			"version":    1,
			"text":       testDecls,
		},
	}))

	// Line 17 is the "expressions:" key.
	send(t, conn, jsonRPCRequest(2, "textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": testURI},
		"position":     map[string]any{"line": 17, "character": 3},
	}))
	resp, _ := readResponse(t, reader, 2)
	assert.Nil(t, resp["result"], "hover outside declarations should be null")
	assert.Nil(t, resp["error"])

	send(t, conn, jsonRPCRequest(99, "shutdown", nil))
	readResponse(t, reader, 99)
	send(t, conn, jsonRPCNotification("exit", nil))
}
