package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidPayload = errors.New("invalid payload")

// maxReported caps how many schema violations end up in one error.
const maxReported = 5

const gameProperties = `{
	"publisherId": {"type": "string"},
	"name":        {"type": "string", "minLength": 1},
	"platform":    {"type": "string", "minLength": 1},
	"storeId":     {"type": "string"},
	"bundleId":    {"type": "string"},
	"appVersion":  {"type": "string"},
	"isPublished": {"type": "boolean"}
}`

var (
	createGameSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"additionalProperties": false,
		"required": ["publisherId", "name", "platform"],
		"properties": ` + gameProperties + `
	}`)

	// Updates may echo a fetched game back, so the stored read-only fields
	// are allowed and ignored; at least one writable field must be present.
	updateGameSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"additionalProperties": false,
		"properties": ` + strings.TrimSuffix(gameProperties, "}") + `,
			"id":        {"type": "integer"},
			"createdAt": {"type": "string"},
			"updatedAt": {"type": "string"}
		},
		"anyOf": [
			{"required": ["publisherId"]},
			{"required": ["name"]},
			{"required": ["platform"]},
			{"required": ["storeId"]},
			{"required": ["bundleId"]},
			{"required": ["appVersion"]},
			{"required": ["isPublished"]}
		]
	}`)

	searchSchema = mustSchema(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"name":     {"type": "string"},
			"platform": {"type": "string"}
		}
	}`)
)

func mustSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("validation: bad schema: %v", err))
	}
	return schema
}

func CreateGame(body []byte) error {
	return validate(createGameSchema, body, false)
}

// UpdateGame accepts any subset of the writable fields. id, createdAt and
// updatedAt may be present but are never written.
func UpdateGame(body []byte) error {
	return validate(updateGameSchema, body, false)
}

// Search accepts an empty body as "no filters".
func Search(body []byte) error {
	return validate(searchSchema, body, true)
}

func validate(schema *gojsonschema.Schema, body []byte, allowEmpty bool) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}

	if res.Valid() {
		return nil
	}

	var msgs []string
	for i, e := range res.Errors() {
		if i >= maxReported {
			break
		}
		msgs = append(msgs, e.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
}
