// Package api holds the published API description of the user service.
package api

import _ "embed"

// UserSwaggerJSON is the OpenAPI 2.0 document for the REST API.
//
//go:embed openapi/user.swagger.json
var UserSwaggerJSON []byte
