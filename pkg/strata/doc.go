// Package strata provides a dynamic content API engine: a single generic REST
// surface for user-defined content types made of named, typed fields.
//
// It exposes an Engine interface that runs every request through a composable
// middleware pipeline (logging, authentication, authorization, CORS, rate
// limiting), resolves the request path to a content-type schema, dispatches
// the HTTP verb to the matching CRUD operation, and normalizes raw client
// field values into validated, storage-ready records. Implementations of the
// entry store (memory, Postgres) and the content-type registry (memory, YAML
// files, TTL cache) are provided under subpackages.
//
// Validation Strategy
//
// Field validation dispatches through a per-type rules table. Field types
// without a registered rule (DATE, BOOLEAN, JSON, and any type the engine
// does not know) are accepted as valid, so a schema may declare field types
// ahead of the rules that constrain them. The required-field check is
// type-independent and always runs first.
package strata
