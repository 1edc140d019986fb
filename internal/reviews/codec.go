package reviews

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchemaURL = "https://manaklaltailor.in/schemas/review-record.json"

const recordSchema = `{
	"type": "object",
	"required": ["name", "text", "rating", "time"],
	"properties": {
		"name":   {"type": "string", "minLength": 1},
		"text":   {"type": "string", "minLength": 1},
		"rating": {"type": "integer", "minimum": 1, "maximum": 5},
		"time":   {"type": "integer"},
		"id":     {"type": "string"},
		"seq":    {"type": "integer", "minimum": 0}
	}
}`

var recordValidator = mustCompileRecordSchema()

func mustCompileRecordSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(recordSchemaURL, strings.NewReader(recordSchema)); err != nil {
		panic(fmt.Sprintf("reviews: load record schema: %v", err))
	}
	schema, err := c.Compile(recordSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("reviews: compile record schema: %v", err))
	}
	return schema
}

// DecodeReport describes what Decode kept and discarded.
type DecodeReport struct {
	// Malformed is set when the payload was not a JSON array at all.
	Malformed bool
	Dropped   int
}

// Decode parses a persisted payload. It never fails: a payload that is not a
// JSON array yields an empty collection, and array elements that do not
// validate as records are dropped while the rest are kept in order.
func Decode(payload string) (Collection, DecodeReport) {
	var report DecodeReport
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		report.Malformed = true
		return Collection{}, report
	}

	out := make(Collection, 0, len(raws))
	for _, raw := range raws {
		rec, ok := decodeRecord(raw)
		if !ok {
			report.Dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, report
}

func decodeRecord(raw json.RawMessage) (Record, bool) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Record{}, false
	}
	if err := recordValidator.Validate(generic); err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// integral floats such as 4.0 pass the schema but not an int field
		return Record{}, false
	}
	return rec, rec.Valid()
}

// Encode serializes the whole collection as one JSON array.
func Encode(c Collection) (string, error) {
	if c == nil {
		c = Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("reviews: encode collection: %w", err)
	}
	return string(data), nil
}
