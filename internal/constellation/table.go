package constellation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Table is a dataframe serialized as an array of row objects. Column order
// follows the keys of the first row; every cell is kept as display text.
type Table struct {
	Columns []string
	Rows    [][]string
}

// UnmarshalJSON decodes `[{"a": 1, "b": "x"}, ...]` without losing key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("df_json: %w", err)
	}
	if tok == nil {
		*t = Table{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("df_json: expected array, got %v", tok)
	}

	t.Columns = nil
	t.Rows = nil
	index := map[string]int{}

	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return fmt.Errorf("df_json: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return fmt.Errorf("df_json: expected row object, got %v", tok)
		}

		row := make([]string, len(t.Columns))
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("df_json: %w", err)
			}
			key, _ := keyTok.(string)

			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("df_json: column %q: %w", key, err)
			}

			col, ok := index[key]
			if !ok {
				col = len(t.Columns)
				index[key] = col
				t.Columns = append(t.Columns, key)
				// Pad earlier rows for columns that appear late.
				for i := range t.Rows {
					t.Rows[i] = append(t.Rows[i], "")
				}
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = cellString(raw)
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return fmt.Errorf("df_json: %w", err)
		}
		for len(row) < len(t.Columns) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return fmt.Errorf("df_json: %w", err)
	}
	return nil
}

// MarshalJSON writes rows back as objects in column order.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(col)
			buf.Write(k)
			buf.WriteByte(':')
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			v, _ := json.Marshal(cell)
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// cellString renders a JSON value the way the data grid displays it.
func cellString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	default:
		// Numbers, booleans and null are shown literally.
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil && bytes.ContainsAny(raw, "eE") {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	}
	return string(raw)
}
