// Package openapi embeds the HTTP API description served at /openapi.yaml.
package openapi

import _ "embed"

// Document is the OpenAPI 3 description of the recordhub HTTP API.
//
//go:embed recordhub.yaml
var Document []byte

// Spec returns a copy of the embedded document.
func Spec() []byte {
	return append([]byte(nil), Document...)
}
