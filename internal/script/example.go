package script

import (
	_ "embed"
)

// ExampleName is the identifier under which the embedded example is served.
const ExampleName = "example"

//go:embed example.json
var exampleJSON []byte

// Example returns the embedded two-speaker example conversation.
func Example() Script {
	s, err := Parse(exampleJSON, FormatJSON)
	if err != nil {
		panic("embedded example script is invalid: " + err.Error())
	}
	return s
}
