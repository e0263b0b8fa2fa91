/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package lsp serves TAS scripts to editors over the Language Server
// Protocol on a byte stream, usually stdio.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	applog "github.com/Blenderiste09/p2tas-lang/internal/log"
	"github.com/Blenderiste09/p2tas-lang/internal/tasscript"
	"github.com/Blenderiste09/p2tas-lang/internal/version"
)

// DiagnosticSource tags every published diagnostic.
const DiagnosticSource = "p2tas"

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("lsp: exit received before shutdown")

// Server answers LSP requests for TAS scripts.
type Server struct {
	parser   *tasscript.Parser
	docs     *Store
	log      *slog.Logger
	conn     *Conn
	shutdown bool
}

// NewServer returns a server parsing documents with parser.
func NewServer(parser *tasscript.Parser) *Server {
	if parser == nil {
		parser = tasscript.NewParser(nil)
	}
	return &Server{parser: parser, docs: NewStore(), log: applog.WithComponent("lsp")}
}

// Documents exposes the open document store.
func (s *Server) Documents() *Store { return s.docs }

// Serve reads messages from in and writes replies to out until the client
// exits, in is closed or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.conn = NewConn(in, out)
	s.log.Info("language server started", slog.String("version", version.String()))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := s.conn.Read()
		if errors.Is(err, io.EOF) {
			s.log.Info("input closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("lsp: %w", err)
		}

		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			s.log.Warn("malformed message", slog.Any("err", err))
			s.reply(nil, nil, &RPCError{Code: codeParseError, Message: "Parse error"})
			continue
		}
		if req.Method == "exit" {
			if !s.shutdown {
				return ErrExitWithoutShutdown
			}
			s.log.Info("exit")
			return nil
		}
		s.handle(ctx, &req)
	}
}

func (s *Server) handle(ctx context.Context, req *request) {
	l := applog.WithOperation(s.log, req.Method)
	l.Debug("message received")

	if s.shutdown && !req.isNotification() {
		s.reply(req.ID, nil, &RPCError{Code: codeInvalidRequest, Message: "Server is shutting down"})
		return
	}

	var (
		result any
		rerr   *RPCError
	)
	switch req.Method {
	case "initialize":
		result = s.initialize()
	case "initialized", "$/cancelRequest", "$/setTrace":
		return
	case "shutdown":
		s.shutdown = true
	case "textDocument/didOpen":
		var p DidOpenTextDocumentParams
		if rerr = decodeParams(req.Params, &p); rerr == nil {
			s.update(ctx, p.TextDocument.URI, p.TextDocument.Text)
		}
	case "textDocument/didChange":
		var p DidChangeTextDocumentParams
		if rerr = decodeParams(req.Params, &p); rerr == nil && len(p.ContentChanges) > 0 {
			// Full sync: the last change holds the whole document.
			s.update(ctx, p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text)
		}
	case "textDocument/didClose":
		var p DidCloseTextDocumentParams
		if rerr = decodeParams(req.Params, &p); rerr == nil {
			s.docs.Delete(p.TextDocument.URI)
			s.publish(p.TextDocument.URI, nil)
		}
	case "textDocument/completion":
		var p TextDocumentPositionParams
		if rerr = decodeParams(req.Params, &p); rerr == nil {
			result = s.completion(p)
		}
	case "textDocument/hover":
		var p TextDocumentPositionParams
		if rerr = decodeParams(req.Params, &p); rerr == nil {
			result = s.hover(p)
		}
	case "p2tas/activeTools":
		var uri string
		var line int
		if rerr = decodeLineParams(req.Params, &uri, &line); rerr == nil {
			result = s.activeTools(uri, line)
		}
	case "p2tas/lineTick":
		var uri string
		var line int
		if rerr = decodeLineParams(req.Params, &uri, &line); rerr == nil {
			result = s.lineTick(uri, line)
		}
	default:
		if req.isNotification() {
			l.Debug("notification ignored")
			return
		}
		rerr = &RPCError{Code: codeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)}
	}

	if rerr != nil {
		l.Warn("request failed", slog.Int("code", rerr.Code), slog.String("err", rerr.Message))
	}
	if req.isNotification() {
		return
	}
	s.reply(req.ID, result, rerr)
}

func (s *Server) reply(id json.RawMessage, result any, rerr *RPCError) {
	resp := response{JSONRPC: "2.0", ID: id, Error: rerr}
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	if rerr == nil {
		data, err := json.Marshal(result)
		if err != nil {
			s.log.Error("marshal result failed", slog.Any("err", err))
			resp.Error = &RPCError{Code: codeInternalError, Message: "Internal error"}
		} else {
			resp.Result = data
		}
	}
	if err := s.conn.Write(resp); err != nil {
		s.log.Error("write response failed", slog.Any("err", err))
	}
}

func (s *Server) notify(method string, params any) {
	if err := s.conn.Write(notification{JSONRPC: "2.0", Method: method, Params: params}); err != nil {
		s.log.Error("write notification failed", slog.String("method", method), slog.Any("err", err))
	}
}

func decodeParams(raw json.RawMessage, v any) *RPCError {
	if len(raw) == 0 {
		return &RPCError{Code: codeInvalidParams, Message: "Missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("Invalid params: %v", err)}
	}
	return nil
}

// decodeLineParams reads the [uri, line] pair of the custom requests. The URI
// is either a plain string or an object carrying it in "external".
func decodeLineParams(raw json.RawMessage, uri *string, line *int) *RPCError {
	var pair []json.RawMessage
	if rerr := decodeParams(raw, &pair); rerr != nil {
		return rerr
	}
	if len(pair) != 2 {
		return &RPCError{Code: codeInvalidParams, Message: "Expected [uri, line]"}
	}
	if err := json.Unmarshal(pair[0], uri); err != nil {
		var obj struct {
			External string `json:"external"`
		}
		if err := json.Unmarshal(pair[0], &obj); err != nil || obj.External == "" {
			return &RPCError{Code: codeInvalidParams, Message: "Invalid document uri"}
		}
		*uri = obj.External
	}
	if err := json.Unmarshal(pair[1], line); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "Invalid line number"}
	}
	return nil
}

func (s *Server) initialize() InitializeResult {
	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // Full sync
			HoverProvider:      true,
			CompletionProvider: &CompletionOptions{TriggerCharacters: []string{" ", ";"}},
		},
		ServerInfo: ServerInfo{Name: "p2tas", Version: version.String()},
	}
}

// update parses text, swaps the stored script and publishes its diagnostics.
func (s *Server) update(ctx context.Context, uri, text string) {
	if ctx.Err() != nil {
		return
	}
	script := s.parser.Parse(text)
	s.docs.Set(uri, script)
	s.publish(uri, script)
}

func (s *Server) publish(uri string, script *tasscript.Script) {
	diags := []Diagnostic{}
	if script != nil {
		for _, d := range script.Diagnostics {
			text := ""
			if d.Line < len(script.Lines) {
				text = script.Lines[d.Line].Text
			}
			diags = append(diags, Diagnostic{
				Range: Range{
					Start: Position{Line: d.Line, Character: toUTF16(text, d.Start)},
					End:   Position{Line: d.Line, Character: toUTF16(text, d.End)},
				},
				Severity: int(d.Severity),
				Source:   DiagnosticSource,
				Message:  d.Message,
			})
		}
	}
	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// locate returns the script of a position and the byte column it points at.
func (s *Server) locate(p TextDocumentPositionParams) (*tasscript.Script, int, bool) {
	script, ok := s.docs.Get(p.TextDocument.URI)
	if !ok || p.Position.Line < 0 || p.Position.Line >= script.LineCount() {
		return nil, 0, false
	}
	return script, fromUTF16(script.Lines[p.Position.Line].Text, p.Position.Character), true
}

func (s *Server) completion(p TextDocumentPositionParams) []CompletionItem {
	items := []CompletionItem{}
	script, col, ok := s.locate(p)
	if !ok {
		return items
	}
	for _, c := range script.CompletionsAt(p.Position.Line, col) {
		item := CompletionItem{Label: c.Label, Kind: itemKindField, InsertText: c.InsertText}
		if c.Kind == tasscript.CompletionTool {
			item.Kind = itemKindMethod
		}
		if c.Documentation != "" {
			item.Documentation = &MarkupContent{Kind: "markdown", Value: c.Documentation}
		}
		if c.Snippet {
			item.InsertTextFormat = insertTextFormatSnippet
		}
		items = append(items, item)
	}
	return items
}

func (s *Server) hover(p TextDocumentPositionParams) *HoverResult {
	script, col, ok := s.locate(p)
	if !ok {
		return nil
	}
	h, ok := script.HoverAt(p.Position.Line, col)
	if !ok {
		return nil
	}
	return &HoverResult{Contents: MarkupContent{Kind: "markdown", Value: strings.Join(h.Contents, "\n\n")}}
}

func (s *Server) activeTools(uri string, line int) string {
	script, ok := s.docs.Get(uri)
	if !ok {
		return ""
	}
	return strings.Join(script.ActiveToolsAt(line), ", ")
}

// lineTick returns the tick of line, or an empty string for unknown
// documents and lines.
func (s *Server) lineTick(uri string, line int) any {
	script, ok := s.docs.Get(uri)
	if !ok {
		return ""
	}
	tick, ok := script.TickAt(line)
	if !ok {
		return ""
	}
	return tick
}
