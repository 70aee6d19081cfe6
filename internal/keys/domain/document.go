package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record holds the JSON fields stored for one key.
type Record map[string]any

// String returns field name as a string, or "" when it is absent or not a string.
func (r Record) String(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// IssuedAt parses the issued_at field. Missing or unparsable values yield the zero time
// so that legacy keys sort as the oldest.
func (r Record) IssuedAt() time.Time {
	issuedAt, err := time.Parse(time.RFC3339Nano, r.String(FieldIssuedAt))
	if err != nil {
		return time.Time{}
	}
	return issuedAt
}

// Document is a key document: key ids mapped to records, in insertion order.
type Document struct {
	ids     []string
	records map[string]Record
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{records: make(map[string]Record)}
}

// ParseDocument decodes the JSON object stored at path. Empty data is an empty document.
func ParseDocument(path string, data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	doc := NewDocument()
	if len(data) == 0 {
		return doc, nil
	}

	if !json.Valid(data) {
		return nil, &KeyStoreCorruptError{Path: path, Reason: "it should be a JSON encoded object but it isn't JSON"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &KeyStoreCorruptError{Path: path, Reason: err.Error()}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &KeyStoreCorruptError{Path: path, Reason: "it should be a JSON encoded object but it isn't an object"}
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &KeyStoreCorruptError{Path: path, Reason: err.Error()}
		}
		id, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &KeyStoreCorruptError{Path: path, Reason: err.Error()}
		}

		var record Record
		if err := json.Unmarshal(raw, &record); err != nil || record == nil {
			return nil, &KeyStoreCorruptError{Path: path, Reason: fmt.Sprintf("the entry for key '%s' isn't an object", id)}
		}
		doc.Put(id, record)
	}

	return doc, nil
}

// MarshalJSON writes the records in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range d.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(d.records[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a copy that can be mutated independently. Records are shared.
func (d *Document) Clone() *Document {
	clone := NewDocument()
	for _, id := range d.ids {
		clone.Put(id, d.records[id])
	}
	return clone
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.ids)
}

// IDs returns the key ids in insertion order.
func (d *Document) IDs() []string {
	return append([]string(nil), d.ids...)
}

// Get returns the record stored for id.
func (d *Document) Get(id string) (Record, bool) {
	record, ok := d.records[id]
	return record, ok
}

// Has reports whether id is present.
func (d *Document) Has(id string) bool {
	_, ok := d.records[id]
	return ok
}

// Put stores record under id. A new id is appended; an existing one keeps its position.
func (d *Document) Put(id string, record Record) {
	if _, ok := d.records[id]; !ok {
		d.ids = append(d.ids, id)
	}
	d.records[id] = record
}

// Remove deletes id and reports whether it was present.
func (d *Document) Remove(id string) bool {
	if _, ok := d.records[id]; !ok {
		return false
	}
	delete(d.records, id)
	for i, existing := range d.ids {
		if existing == id {
			d.ids = append(d.ids[:i:i], d.ids[i+1:]...)
			break
		}
	}
	return true
}

// Oldest returns the id with the earliest issued_at; the first inserted wins ties.
func (d *Document) Oldest() (string, bool) {
	if len(d.ids) == 0 {
		return "", false
	}
	oldest := d.ids[0]
	oldestAt := d.records[oldest].IssuedAt()
	for _, id := range d.ids[1:] {
		if at := d.records[id].IssuedAt(); at.Before(oldestAt) {
			oldest, oldestAt = id, at
		}
	}
	return oldest, true
}

// Youngest returns the id with the latest issued_at; the last inserted wins ties.
func (d *Document) Youngest() (string, bool) {
	if len(d.ids) == 0 {
		return "", false
	}
	youngest := d.ids[0]
	youngestAt := d.records[youngest].IssuedAt()
	for _, id := range d.ids[1:] {
		if at := d.records[id].IssuedAt(); !at.Before(youngestAt) {
			youngest, youngestAt = id, at
		}
	}
	return youngest, true
}

// CheckConsistency fails with *KeyStoreInconsistentError unless both documents hold
// exactly the same key ids.
func CheckConsistency(private, public *Document) error {
	var privateOnly, publicOnly []string
	for _, id := range private.ids {
		if !public.Has(id) {
			privateOnly = append(privateOnly, id)
		}
	}
	for _, id := range public.ids {
		if !private.Has(id) {
			publicOnly = append(publicOnly, id)
		}
	}
	if len(privateOnly) > 0 || len(publicOnly) > 0 {
		return &KeyStoreInconsistentError{PrivateOnly: privateOnly, PublicOnly: publicOnly}
	}
	return nil
}
