// Package fkgraph implements the FK Graph Engine (spec.md §4.7): a
// bounded, multi-source breadth-first search over foreign-key constraints
// starting from every table already in scope at the cursor, used to
// surface join candidates the Assembler can offer ahead of the user
// typing a join condition.
package fkgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/sqlscope/internal/metadata"
	"github.com/sadopc/sqlscope/internal/schema"
	"github.com/sadopc/sqlscope/internal/scope"
)

// Candidate is one join target reachable from the in-scope tables.
type Candidate struct {
	TargetTable string // bare table name
	TargetKey   string // lowercase "schema.name"
	HopCount    int
	Path        []string // full chain of keys from an in-scope source to TargetKey
	Constraint  string
	SourceTable string // the in-scope table the BFS started from
	ViaTable    string // immediate predecessor (== SourceTable on hop 1)
}

// Label renders the candidate per spec.md §4.7's "Label conventions":
// hop 1 is the bare target name, deeper hops are "Target (via Predecessor)".
func (c Candidate) Label() string {
	if c.HopCount <= 1 {
		return c.TargetTable
	}
	return fmt.Sprintf("%s (via %s)", c.TargetTable, c.ViaTable)
}

// Build runs the bounded multi-source BFS described in spec.md §4.7 from
// every table in sc, up to maxDepth hops (default 2, may be 3). It
// returns candidates grouped by hop count; within a hop the order is
// unsorted, per spec.md's "output per hop-count is unsorted; the
// Assembler applies priority bands and sorts".
func Build(ctx context.Context, src metadata.Source, database, schemaName string, sc scope.Scope, maxDepth int) (map[int][]Candidate, error) {
	if maxDepth <= 0 {
		maxDepth = 2
	}

	visited := map[string]bool{}
	type frontierNode struct {
		key      string
		table    string
		schema   string
		database string
		path     []string
		source   string
		via      string
	}

	var frontier []frontierNode
	for _, t := range sc.Tables {
		if t.IsCTE || t.IsTemp || t.IsSubquery {
			continue // not real FK-bearing objects
		}
		sch := t.Schema
		if sch == "" {
			sch = schemaName
		}
		key := strings.ToLower(sch + "." + t.Name)
		visited[key] = true
		frontier = append(frontier, frontierNode{
			key: key, table: t.Name, schema: sch, database: database,
			path: []string{key}, source: t.Name, via: t.Name,
		})
	}

	out := map[int][]Candidate{}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []frontierNode
		for _, node := range frontier {
			obj := schema.ObjectRef{Database: node.database, Schema: node.schema, Name: node.table, Kind: schema.KindTable}
			fks, err := src.GetConstraints(ctx, obj)
			if err != nil {
				return out, fmt.Errorf("fkgraph: constraints for %s: %w", node.table, err)
			}
			for _, fk := range fks {
				refSchema := fk.RefSchema
				if refSchema == "" {
					refSchema = node.schema
				}
				targetKey := strings.ToLower(refSchema + "." + fk.RefTable)

				if visited[targetKey] || containsKey(node.path, targetKey) {
					continue // already in scope, or would close a cycle
				}

				candPath := append(append([]string{}, node.path...), targetKey)
				out[depth] = append(out[depth], Candidate{
					TargetTable: fk.RefTable,
					TargetKey:   targetKey,
					HopCount:    depth,
					Path:        candPath,
					Constraint:  fk.Name,
					SourceTable: node.source,
					ViaTable:    node.table,
				})
				visited[targetKey] = true
				next = append(next, frontierNode{
					key: targetKey, table: fk.RefTable, schema: refSchema, database: node.database,
					path: candPath, source: node.source, via: fk.RefTable,
				})
			}
		}
		frontier = next
	}
	return out, nil
}

func containsKey(path []string, key string) bool {
	for _, p := range path {
		if p == key {
			return true
		}
	}
	return false
}
