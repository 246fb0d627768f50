// Package validation validates job definitions and configuration.
//
// Struct tags cover shape checks:
//
//	type NodeDef struct {
//	    Name string `yaml:"name" validate:"required"`
//	}
//	err := validation.Validate(def)
//
// The Validator collects cross-field checks and reports them together:
//
//	v := validation.New()
//	v.Exclusive("nodes[0]", map[string]string{"input": in, "from": from})
//	v.Custom(seen[out], "output", "unknown chain")
//	err := v.Err()
package validation
