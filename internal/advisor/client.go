// Package advisor is the gateway to the external text generation service.
//
// Every operation follows one policy: without a credential, or on any
// failure of the external call, it answers with a fixed deterministic value.
// No operation ever returns an error to its caller.
package advisor

import (
	"context"
	"errors"
)

// Kind is the type of a schema property.
type Kind int

const (
	KindString Kind = iota
	KindStringList
)

// Property is one named field of a structured response.
type Property struct {
	Name string
	Kind Kind
}

// Schema constrains a response to a JSON object with the given properties.
type Schema struct {
	Properties []Property
}

// Request is one call to the generation service. A nil Schema asks for
// plain text.
type Request struct {
	Operation string
	Prompt    string
	Schema    *Schema
}

// Client is the external generation service.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config is injected at construction. An empty APIKey means demo mode.
type Config struct {
	APIKey string
	Model  string
}

// ErrEmptyResponse is returned by clients that got no text back.
var ErrEmptyResponse = errors.New("empty response")
