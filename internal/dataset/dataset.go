// Package dataset serves read-only lookup tables loaded from JSON files,
// used by the persona and product tools.
package dataset

import (
    "encoding/json"
    "fmt"
    "os"
    "strings"

    "cryptotools/internal/provider"
)

// Record is one row of a table.
type Record map[string]any

// Table is an in-memory id -> record index. Keys match case-insensitively.
type Table struct {
    name  string
    byKey map[string]Record
    keys  []string // original casing, file order
}

// Load reads a JSON array of objects from path and indexes it by keyField.
func Load(name, path, keyField string) (*Table, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("read %s: %w", name, err)
    }
    var rows []Record
    if err := json.Unmarshal(b, &rows); err != nil {
        return nil, fmt.Errorf("parse %s: %w", name, err)
    }
    t := &Table{name: name, byKey: make(map[string]Record, len(rows))}
    for i, row := range rows {
        raw, ok := row[keyField]
        if !ok {
            return nil, fmt.Errorf("%s: row %d missing %q", name, i, keyField)
        }
        key, ok := raw.(string)
        if !ok || strings.TrimSpace(key) == "" {
            return nil, fmt.Errorf("%s: row %d has non-string %q", name, i, keyField)
        }
        lower := strings.ToLower(key)
        if _, dup := t.byKey[lower]; dup {
            return nil, fmt.Errorf("%s: duplicate key %q", name, key)
        }
        t.byKey[lower] = row
        t.keys = append(t.keys, key)
    }
    return t, nil
}

func (t *Table) Name() string { return t.name }

// Get returns the record for key, matching case-insensitively.
func (t *Table) Get(key string) (Record, error) {
    rec, ok := t.byKey[strings.ToLower(strings.TrimSpace(key))]
    if !ok {
        return nil, provider.Errorf(provider.KindNotFound, "%s %q not found", t.name, key)
    }
    return rec, nil
}

// Keys returns all keys in file order.
func (t *Table) Keys() []string {
    out := make([]string, len(t.keys))
    copy(out, t.keys)
    return out
}
