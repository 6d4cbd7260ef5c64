// Package complete implements the core's top-level entry points (spec.md
// §6): detect_context (synchronous) and complete (asynchronous), wiring
// together the Tokenizer, Statement Parser, Context Classifier, Scope
// Builder, Metadata Resolver, FK Graph Engine, Assembler, and Formatter.
package complete

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/sqlscope/internal/assemble"
	"github.com/sadopc/sqlscope/internal/classify"
	"github.com/sadopc/sqlscope/internal/coreerr"
	"github.com/sadopc/sqlscope/internal/fkgraph"
	"github.com/sadopc/sqlscope/internal/itemfmt"
	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/resolve"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
	"github.com/sadopc/sqlscope/internal/stmt"
	"github.com/sadopc/sqlscope/internal/token"
	"github.com/sadopc/sqlscope/internal/tokenutil"
)

// Buffer is one open SQL buffer's text and dialect, keyed by Engine
// callers under an opaque buffer_id (spec.md §6).
type Buffer struct {
	Text    string
	Dialect token.Dialect
}

// Options configures one Engine (spec.md's "completion:" config block).
type Options struct {
	FKMaxDepth     int
	RequestTimeout time.Duration
	MaxItems       int
	Server         string
	Database       string
	Schema         string
	ShowSchema     bool
	Keywords       []string
}

// Engine is the core's single entry point, bound to a metadata
// collaborator and a diagnostic sink.
type Engine struct {
	Source metadata.Source
	Opts   Options
	Diag   func(kind string, detail string) // nil-safe diagnostic hook

	mu      sync.Mutex
	buffers map[string]Buffer
	pending map[string]context.CancelFunc // buffer_id -> cancel of its in-flight request
}

// New builds an Engine.
func New(src metadata.Source, opts Options) *Engine {
	if opts.FKMaxDepth <= 0 {
		opts.FKMaxDepth = 2
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	return &Engine{
		Source:  src,
		Opts:    opts,
		buffers: map[string]Buffer{},
		pending: map[string]context.CancelFunc{},
	}
}

// SetBuffer registers or updates a buffer's snapshot. Completion requests
// read the latest snapshot set here (spec.md §5 "inputs to the pipeline
// are snapshots").
func (e *Engine) SetBuffer(bufferID string, buf Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffers[bufferID] = buf
}

func (e *Engine) diag(kind, detail string) {
	if e.Diag != nil {
		e.Diag(kind, detail)
	}
}

// analysis holds one request's parsed snapshot, shared between
// DetectContext and Complete so a single buffer is tokenized/parsed once.
type analysis struct {
	buf    Buffer
	toks   []token.Token
	chunks []*stmt.StatementChunk
	chunk  *stmt.StatementChunk
	cursor tokenutil.Pos
	cctx   classify.CursorContext
}

func (e *Engine) analyze(bufferID string, line, col int) (analysis, error) {
	if line <= 0 || col <= 0 {
		return analysis{}, fmt.Errorf("%w: out of range position (%d,%d)", coreerr.ErrInput, line, col)
	}

	e.mu.Lock()
	buf, ok := e.buffers[bufferID]
	e.mu.Unlock()
	if !ok {
		return analysis{}, fmt.Errorf("%w: unknown buffer %q", coreerr.ErrInput, bufferID)
	}

	toks, err := token.Tokenize(buf.Text, buf.Dialect)
	if err != nil {
		e.diag("ParseError", err.Error())
		toks = nil
	}
	chunks := stmt.Parse(toks)
	cursor := tokenutil.Pos{Line: line, Col: col}
	cctx := classify.Classify(buf.Text, toks, chunks, buf.Dialect, cursor)

	return analysis{
		buf: buf, toks: toks, chunks: chunks,
		chunk: enclosingChunkFor(chunks, cursor), cursor: cursor, cctx: cctx,
	}, nil
}

// DetectContext implements spec.md §6 "detect_context(buffer_id, line,
// col) -> CursorContext", synchronous and side-effect free.
func (e *Engine) DetectContext(bufferID string, line, col int) (classify.CursorContext, error) {
	a, err := e.analyze(bufferID, line, col)
	if err != nil {
		return classify.CursorContext{}, err
	}
	return a.cctx, nil
}

// Result is what complete's callback receives.
type Result struct {
	Items       []itemfmt.Item
	Diagnostics []string
}

// Complete implements spec.md §6's "complete(buffer_id, line, col,
// callback)". It supersedes any pending request on the same buffer
// (spec.md §5 "a new request supersedes any pending request on the same
// buffer") and caps the whole pipeline at Opts.RequestTimeout.
func (e *Engine) Complete(ctx context.Context, bufferID string, line, col int, callback func(Result, error)) {
	e.mu.Lock()
	if cancel, ok := e.pending[bufferID]; ok {
		cancel()
	}
	reqCtx, cancel := context.WithTimeout(ctx, e.Opts.RequestTimeout)
	e.pending[bufferID] = cancel
	e.mu.Unlock()

	go func() {
		defer cancel()
		res, err := e.complete(reqCtx, bufferID, line, col)
		if reqCtx.Err() != nil {
			if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
				// Timeout: an empty result with a single timeout diagnostic.
				e.diag("Timeout", bufferID)
				callback(Result{Diagnostics: []string{"request timed out"}}, nil)
				return
			}
			// Cancelled/super-seded: no callback invocation, no diagnostics
			// (spec.md §5 "never invokes its completion callback with items").
			return
		}
		callback(res, err)
	}()
}

func (e *Engine) complete(ctx context.Context, bufferID string, line, col int) (Result, error) {
	a, err := e.analyze(bufferID, line, col)
	if err != nil {
		if isInputError(err) {
			return Result{}, nil // spec.md §7: InputError surfaces as empty result, no diagnostic
		}
		return Result{}, err
	}
	cctx, buf := a.cctx, a.buf
	if !cctx.ShouldComplete {
		return Result{}, nil
	}

	sc := scope.Build(a.chunk, cctx)

	resolver := resolve.New(e.Source, e.Opts.Server, e.Opts.Database, e.Opts.Schema)

	var diagnostics []string
	var colResult resolve.ColumnsResult
	if needsColumns(cctx) {
		colResult, err = resolver.FetchColumns(ctx, sc)
		if err != nil {
			if isCancelled(err) {
				return Result{}, nil
			}
			return Result{}, err
		}
		for _, srcErr := range colResult.Errors {
			diagnostics = append(diagnostics, fmt.Sprintf("metadata error for %s: %v", srcErr.Table, srcErr.Err))
			e.diag("MetadataError", srcErr.Table)
		}
	}

	var fkCandidates map[int][]fkgraph.Candidate
	if needsFKGraph(cctx) {
		fkCandidates, err = fkgraph.Build(ctx, e.Source, e.Opts.Database, e.Opts.Schema, sc, e.Opts.FKMaxDepth)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("fk graph error: %v", err))
			e.diag("MetadataError", "fkgraph")
			fkCandidates = nil
		}
	}

	databases, schemas, tables, views, synonyms, tvfs, scalars := e.listSiblings(ctx, cctx, buf.Dialect)
	snippets, err := e.Source.Snippets(ctx)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("snippet load error: %v", err))
		snippets = nil
	}

	req := assemble.Request{
		Context:   cctx,
		Scope:     sc,
		Columns:   colResult,
		FKDepth:   fkCandidates,
		Databases: databases,
		Schemas:   schemas,
		Tables:    tables,
		Views:     views,
		Synonyms:  synonyms,
		TVFs:      tvfs,
		Functions: scalars,
		Keywords:  e.keywordsFor(cctx),
		Snippets:  snippets,
		Weights: func(kind, path string) int {
			return resolver.UsageWeight(ctx, kind, path)
		},
	}
	items := assemble.Assemble(req)
	if e.Opts.MaxItems > 0 && len(items) > e.Opts.MaxItems {
		items = items[:e.Opts.MaxItems]
	}

	return Result{
		Items:       itemfmt.FormatAll(items, buf.Dialect, e.Opts.ShowSchema),
		Diagnostics: diagnostics,
	}, nil
}

func (e *Engine) keywordsFor(cctx classify.CursorContext) []string {
	if cctx.Type != classify.TypeKeyword {
		return nil
	}
	return e.Opts.Keywords
}

// listSiblings fetches the database/schema/table/view/synonym/function
// inventory relevant to a TABLE-mode completion. It is synchronous
// (spec.md §4.7 "constraint fetch" and sibling-object listing use the
// synchronous metadata interface, not the fan-out primitive).
func (e *Engine) listSiblings(ctx context.Context, cctx classify.CursorContext, dialect token.Dialect) (databases, schemas []string, tables []schema.Table, views []schema.View, synonyms []schema.Synonym, tvfs, scalars []schema.Function) {
	if cctx.Type != classify.TypeTable && cctx.Type != classify.TypeColumn && cctx.Type != classify.TypeDatabase && cctx.Type != classify.TypeSchema {
		return
	}
	db := e.Opts.Database
	sch := e.Opts.Schema
	if cctx.Extra.FilterDatabase != "" {
		db = cctx.Extra.FilterDatabase
	}
	if cctx.Extra.FilterSchema != "" {
		sch = cctx.Extra.FilterSchema
	}

	if cctx.Type == classify.TypeDatabase {
		if dbs, err := e.Source.ListDatabases(ctx); err == nil {
			for _, d := range dbs {
				databases = append(databases, d.Name)
			}
		}
		return
	}
	if cctx.Type == classify.TypeSchema {
		if schs, err := e.Source.ListSchemas(ctx, db); err == nil {
			for _, s := range schs {
				schemas = append(schemas, s.Name)
			}
		}
		return
	}

	if cctx.Type == classify.TypeTable {
		tables, _ = e.Source.ListTables(ctx, db, sch)
	}

	feat := e.Source.Features(string(dialect))
	if feat.Views {
		views, _ = e.Source.ListViews(ctx, db, sch)
	}
	if feat.Synonyms {
		synonyms, _ = e.Source.ListSynonyms(ctx, db, sch)
	}
	if feat.Functions {
		fns, _ := e.Source.ListFunctions(ctx, db, sch)
		for _, f := range fns {
			if f.IsTableValued {
				tvfs = append(tvfs, f)
			} else {
				scalars = append(scalars, f)
			}
		}
	}
	return
}

func needsColumns(cctx classify.CursorContext) bool {
	return cctx.Type == classify.TypeColumn
}

func needsFKGraph(cctx classify.CursorContext) bool {
	if cctx.Type != classify.TypeTable {
		return false
	}
	switch cctx.Mode {
	case "join", "join_qualified", "join_cross_db_qualified":
		return true
	default:
		return false
	}
}

func enclosingChunkFor(chunks []*stmt.StatementChunk, cursor tokenutil.Pos) *stmt.StatementChunk {
	for _, c := range chunks {
		if _, _, ok := c.ClauseAt(cursor); ok {
			if c.Subquery != nil {
				if _, _, ok := c.Subquery.ClauseAt(cursor); ok {
					return c.Subquery
				}
			}
			return c
		}
	}
	if len(chunks) > 0 {
		return chunks[len(chunks)-1]
	}
	return nil
}

func isInputError(err error) bool { return errors.Is(err, coreerr.ErrInput) }
func isCancelled(err error) bool  { return errors.Is(err, coreerr.ErrCancelled) }
