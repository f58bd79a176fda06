package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schemaCUE constrains a `config:` block before it is decoded.
const schemaCUE = `
#Config: {
	compound_key_templates: [string, ...string]
	weights: [string]: number & >0
	threshold: number & >=0 & <=1
	transaction_types?: [...string]
	potential_columns?: [...string]
}
`

// decodeCUE evaluates a CUE file, unifies its top-level `config` value with
// the schema and decodes the result.
func decodeCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config %s: %w", path, err)
	}

	cv := v.LookupPath(cue.ParsePath("config"))
	if !cv.Exists() {
		return Config{}, fmt.Errorf("config %s: no top-level config value", path)
	}

	cv = cv.Unify(schema.LookupPath(cue.ParsePath("#Config")))
	if err := cv.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := cv.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
