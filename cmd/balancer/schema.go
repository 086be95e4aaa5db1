// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

var (
	//go:embed schemas/pool.schema.json
	poolSchemaBytes []byte
	//go:embed schemas/hook.schema.json
	hookSchemaBytes []byte

	poolSchema = mustSchema(poolSchemaBytes)
	hookSchema = mustSchema(hookSchemaBytes)
)

func mustSchema(b []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return s
}

func validatePool(data []byte) error { return validate(poolSchema, data) }
func validateHook(data []byte) error { return validate(hookSchema, data) }

func validate(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(msgs, "; "))
}
