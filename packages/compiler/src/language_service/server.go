package language_service

import (
	"net/url"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	// registers the default commonlog backend
	_ "github.com/tliron/commonlog/simple"

	"ngexpr-go/packages/compiler/src/util"
)

const lsName = "ngexpr"

var diagnosticSource = lsName

// Server is a language server publishing the binding diagnostics of open
// templates.
type Server struct {
	checker *Checker
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger

	mu        sync.Mutex
	documents map[protocol.DocumentUri]string
}

// NewServer creates a Server checking documents with checker.
func NewServer(checker *Checker, version string) *Server {
	ls := &Server{
		checker:   checker,
		version:   version,
		log:       commonlog.GetLogger("ngexpr.lsp"),
		documents: map[protocol.DocumentUri]string{},
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// RunStdio serves the protocol over stdin and stdout.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.log.Info("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	ls.setDocument(doc.URI, doc.Text)
	ls.publish(ctx, doc.URI, doc.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, _ := ls.document(uri)
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start, end := c.Range.IndexesIn(text)
			text = text[:start] + c.Text + text[end:]
		}
	}
	ls.setDocument(uri, text)
	ls.publish(ctx, uri, text)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.mu.Lock()
	delete(ls.documents, uri)
	ls.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, ok := ls.document(uri)
	if params.Text != nil {
		text, ok = *params.Text, true
		ls.setDocument(uri, text)
	}
	if ok {
		ls.publish(ctx, uri, text)
	}
	return nil
}

func (ls *Server) document(uri protocol.DocumentUri) (string, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	text, ok := ls.documents[uri]
	return text, ok
}

func (ls *Server) setDocument(uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	ls.documents[uri] = text
	ls.mu.Unlock()
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path := uri
	if p, err := uriToPath(uri); err == nil {
		path = p
	}
	result := ls.checker.CheckSource(path, text)
	ls.log.Debug("checked document", "uri", uri, "bindings", result.Bindings, "errors", len(result.Errors))

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(text, result.Errors),
	})
}

// Diagnostics converts parse errors found in content to LSP diagnostics.
func Diagnostics(content string, errs []*util.ParseError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		severity := protocol.DiagnosticSeverityError
		if err.Level == util.ParseErrorLevelWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		var r protocol.Range
		if err.Span != nil && err.Span.Start != nil && err.Span.End != nil {
			r = protocol.Range{
				Start: PositionAt(content, err.Span.Start.Offset),
				End:   PositionAt(content, err.Span.End.Offset),
			}
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    r,
			Severity: &severity,
			Source:   &diagnosticSource,
			Message:  err.Msg,
		})
	}
	return diagnostics
}

// PositionAt converts a byte offset into an LSP position, whose character
// counts UTF-16 code units.
func PositionAt(content string, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}
	var line, character protocol.UInteger
	for _, r := range content[:offset] {
		switch {
		case r == '\n':
			line++
			character = 0
		case r >= 0x10000:
			character += 2
		default:
			character++
		}
	}
	return protocol.Position{Line: line, Character: character}
}

func uriToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme == "file" {
		return filepath.FromSlash(u.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
