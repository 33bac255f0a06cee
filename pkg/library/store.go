package library

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/graph"
	"github.com/matzehuels/beltwright/pkg/observability"
	"github.com/matzehuels/beltwright/pkg/registry"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is a package library backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Entry summarizes a stored package.
type Entry struct {
	Hash     string
	Name     string
	Version  string
	Nodes    int
	Children []string
	AddedAt  time.Time
}

// Stale reports whether the entry was hashed with an older scheme.
func (e Entry) Stale() bool { return e.Version != registry.HashVersion }

// Open creates or opens a library at path.
//
// The database runs in WAL mode with a single connection, a 5-second busy
// timeout and foreign keys enforced.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect library %s: %w", path, err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// observe starts timing op. Call the returned func with the operation's
// error when it finishes.
func observe(ctx context.Context, op string) func(*error) {
	start := time.Now()
	return func(err *error) {
		observability.Library().OnQuery(ctx, op, time.Since(start), *err)
	}
}

// encodePackage serializes p as a standalone package document.
func encodePackage(p *graph.PackageModel) ([]byte, error) {
	doc := graph.Serialize(nil, nil, graph.Header{}, map[string]*graph.PackageModel{p.Hash: p}, graph.SerializeOptions{})
	return json.Marshal(doc.Packages[0])
}

// decodePackages parses stored package documents.
func decodePackages(blobs [][]byte) (map[string]*graph.PackageModel, error) {
	doc := &graph.Document{}
	for _, b := range blobs {
		var pd graph.PackageDoc
		if err := json.Unmarshal(b, &pd); err != nil {
			return nil, errors.Wrap(errors.ErrCodePackageDataCorrupt, err, "decode stored package")
		}
		doc.Packages = append(doc.Packages, pd)
	}
	res, err := graph.Parse(doc, graph.ParseOptions{})
	if err != nil {
		return nil, err
	}
	if len(res.Diagnostics) > 0 {
		return nil, errors.New(errors.ErrCodePackageDataCorrupt, "stored package: %s", res.Diagnostics[0])
	}
	return res.Packages, nil
}

// Put stores packages. Packages already present are left untouched.
func (s *Store) Put(ctx context.Context, pkgs ...*graph.PackageModel) (err error) {
	defer observe(ctx, "put")(&err)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insert(ctx, tx, pkgs); err != nil {
		return err
	}
	return tx.Commit()
}

func insert(ctx context.Context, tx *sql.Tx, pkgs []*graph.PackageModel) error {
	now := time.Now().Unix()
	for _, p := range pkgs {
		blob, err := encodePackage(p)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.Hash, err)
		}
		nodes := 0
		if p.Graph != nil {
			nodes = p.Graph.NodeCount()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO packages (hash, name, version, node_count, document, added_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.Hash, p.Name, registry.Version(p.Hash), nodes, blob, now)
		if err != nil {
			return fmt.Errorf("insert %s: %w", p.Hash, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		for _, c := range p.ChildHashes {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO package_children (parent, child) VALUES (?, ?)`, p.Hash, c); err != nil {
				return fmt.Errorf("insert child %s of %s: %w", c, p.Hash, err)
			}
		}
	}
	return nil
}

// Get loads one package.
func (s *Store) Get(ctx context.Context, hash string) (p *graph.PackageModel, err error) {
	defer observe(ctx, "get")(&err)
	var blob []byte
	err = s.db.QueryRowContext(ctx, `SELECT document FROM packages WHERE hash = ?`, hash).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package %s not in library", hash)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", hash, err)
	}
	pkgs, err := decodePackages([][]byte{blob})
	if err != nil {
		return nil, err
	}
	return pkgs[hash], nil
}

// List summarizes every package, ordered by name then hash.
func (s *Store) List(ctx context.Context) (out []Entry, err error) {
	defer observe(ctx, "list")(&err)
	rows, err := s.db.QueryContext(ctx,
		`SELECT hash, name, version, node_count, added_at FROM packages ORDER BY name, hash`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	byHash := make(map[string]int)
	for rows.Next() {
		var e Entry
		var added int64
		if err := rows.Scan(&e.Hash, &e.Name, &e.Version, &e.Nodes, &added); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.AddedAt = time.Unix(added, 0)
		byHash[e.Hash] = len(out)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	children, err := s.db.QueryContext(ctx, `SELECT parent, child FROM package_children ORDER BY parent, child`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer children.Close()
	for children.Next() {
		var parent, child string
		if err := children.Scan(&parent, &child); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		if i, ok := byHash[parent]; ok {
			out[i].Children = append(out[i].Children, child)
		}
	}
	return out, children.Err()
}

// Registry loads the whole library.
func (s *Store) Registry(ctx context.Context) (reg *registry.Registry, err error) {
	defer observe(ctx, "load")(&err)
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM packages ORDER BY hash`)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		blobs = append(blobs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	pkgs, err := decodePackages(blobs)
	if err != nil {
		return nil, err
	}
	return registry.FromMap(pkgs), nil
}

// Delete removes the given packages and returns how many existed.
func (s *Store) Delete(ctx context.Context, hashes ...string) (n int, err error) {
	defer observe(ctx, "delete")(&err)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, h := range hashes {
		res, err := tx.ExecContext(ctx, `DELETE FROM packages WHERE hash = ?`, h)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", h, err)
		}
		affected, _ := res.RowsAffected()
		n += int(affected)
	}
	return n, tx.Commit()
}

// Replace makes the library hold exactly the packages of reg.
func (s *Store) Replace(ctx context.Context, reg *registry.Registry) (err error) {
	defer observe(ctx, "replace")(&err)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM packages`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	pkgs := make([]*graph.PackageModel, 0, reg.Len())
	for _, h := range reg.Hashes() {
		p, _ := reg.Get(h)
		pkgs = append(pkgs, p)
	}
	if err := insert(ctx, tx, pkgs); err != nil {
		return err
	}
	return tx.Commit()
}
