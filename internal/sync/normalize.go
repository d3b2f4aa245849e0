package sync

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gorm.io/datatypes"

	"github.com/xelth-com/maintdesk/internal/localstore"
	"github.com/xelth-com/maintdesk/internal/models"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindInt
	kindBool
	kindJSON
)

// field maps one canonical camelCase attribute to its snake_case column
type field struct {
	name   string
	column string
	kind   fieldKind
}

func text(name string) field      { return field{name, snakeCase(name), kindText} }
func number(name string) field    { return field{name, snakeCase(name), kindNumber} }
func integer(name string) field   { return field{name, snakeCase(name), kindInt} }
func boolean(name string) field   { return field{name, snakeCase(name), kindBool} }
func jsonField(name string) field { return field{name, snakeCase(name), kindJSON} }

// entityDesc describes how one entity type moves between the remote rows,
// the canonical JSON form and the local mirror
type entityDesc[T models.SyncableEntity] struct {
	entity   EntityType
	table    localstore.Table
	fields   []field
	setID    func(*T, string)
	byKey    map[string]field
	byColumn map[string]field
}

// tableDesc is the type-erased part of an entityDesc, enough to replay a
// pending write from its stored document
type tableDesc interface {
	tableName() localstore.Table
	remoteRow(canonical map[string]interface{}) (map[string]interface{}, error)
	canonicalOf(doc []byte) (map[string]interface{}, error)
}

// tableDescs maps each local table to its descriptor
var tableDescs = map[localstore.Table]tableDesc{}

func newEntityDesc[T models.SyncableEntity](entity EntityType, table localstore.Table, setID func(*T, string), fields ...field) *entityDesc[T] {
	s := &entityDesc[T]{
		entity:   entity,
		table:    table,
		fields:   fields,
		setID:    setID,
		byKey:    make(map[string]field, len(fields)),
		byColumn: make(map[string]field, len(fields)),
	}
	for _, f := range fields {
		s.byKey[squash(f.name)] = f
		s.byColumn[f.column] = f
	}
	tableDescs[table] = s
	return s
}

func (s *entityDesc[T]) tableName() localstore.Table {
	return s.table
}

// canonicalOf re-encodes a stored document through T
func (s *entityDesc[T]) canonicalOf(doc []byte) (map[string]interface{}, error) {
	item, err := s.decode(doc)
	if err != nil {
		return nil, err
	}
	_, canonical, err := s.encode(item)
	return canonical, err
}

// normalize turns a remote row, whose keys may be camelCase or snake_case and
// whose JSON columns may be text, bytes or decoded values, into T
func (s *entityDesc[T]) normalize(row map[string]interface{}) (T, error) {
	var item T

	canonical := make(map[string]interface{}, len(row))
	for key, raw := range row {
		f, ok := s.byKey[squash(key)]
		if !ok || raw == nil {
			continue
		}
		v, err := coerce(f.kind, raw)
		if err != nil {
			return item, fmt.Errorf("column %s: %w", key, err)
		}
		if v != nil {
			canonical[f.name] = v
		}
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, err
	}
	return item, nil
}

// encode returns the canonical JSON document and its decoded map
func (s *entityDesc[T]) encode(item T) ([]byte, map[string]interface{}, error) {
	doc, err := json.Marshal(item)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", s.entity, err)
	}
	var canonical map[string]interface{}
	if err := json.Unmarshal(doc, &canonical); err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", s.entity, err)
	}
	return doc, canonical, nil
}

// remoteRow renames canonical fields to remote snake_case columns
func (s *entityDesc[T]) remoteRow(canonical map[string]interface{}) (map[string]interface{}, error) {
	row := make(map[string]interface{}, len(s.fields))
	for _, f := range s.fields {
		v, ok := canonical[f.name]
		if !ok {
			continue
		}
		if v == nil {
			row[f.column] = nil
			continue
		}
		out, err := coerce(f.kind, v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		row[f.column] = out
	}
	return row, nil
}

// record builds the local mirror row: document plus index column values
func (s *entityDesc[T]) record(id string, doc []byte, canonical map[string]interface{}) localstore.Record {
	cols := localstore.Columns(s.table)
	index := make(map[string]interface{}, len(cols))
	for _, col := range cols {
		f, ok := s.byColumn[col]
		if !ok {
			continue
		}
		if v, err := coerce(f.kind, canonical[f.name]); err == nil {
			index[col] = v
		}
	}
	return localstore.Record{ID: id, Data: doc, Index: index}
}

func (s *entityDesc[T]) decode(doc []byte) (T, error) {
	var item T
	err := json.Unmarshal(doc, &item)
	return item, err
}

func coerce(kind fieldKind, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case kindNumber:
		return toFloat(v)
	case kindInt:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return int64(math.Round(f)), nil
	case kindBool:
		return toBool(v)
	case kindJSON:
		return toJSONValue(v)
	default:
		return toText(v), nil
	}
}

func toText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseFloat(t)
	case []byte:
		return parseFloat(string(t))
	default:
		return parseFloat(fmt.Sprint(v))
	}
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func toBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return false, nil
		}
		return strconv.ParseBool(strings.TrimSpace(t))
	default:
		f, err := toFloat(v)
		return f != 0, err
	}
}

// toJSONValue decodes JSON columns delivered as text or bytes
func toJSONValue(v interface{}) (interface{}, error) {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	case json.RawMessage:
		raw = t
	case datatypes.JSON:
		raw = t
	default:
		return v, nil
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// squash folds a column name so camelCase and snake_case spellings collide
func squash(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
