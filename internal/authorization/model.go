// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"encoding/json"
	"fmt"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/language/pkg/go/transformer"
)

const modelV0 = `model
  schema 1.1

type user

type tenant
  relations
    define owner: [user]
    define admin: [user]
    define editor: [user]
    define member: [user] or editor or admin or owner
    define can_view: member
    define can_edit: admin or owner
    define can_delete: owner
`

var models = map[string]string{
	"v0": modelV0,
}

type AuthorizationModelProvider struct {
	version string
}

func (p *AuthorizationModelProvider) GetVersion() string {
	return p.version
}

// GetModel compiles the DSL of the provider version, it panics on an unknown
// version or a broken model since both are programming errors.
func (p *AuthorizationModelProvider) GetModel() *fga.AuthorizationModel {
	model, err := p.Model()
	if err != nil {
		panic(err)
	}

	return model
}

// Model is GetModel for versions coming from user input.
func (p *AuthorizationModelProvider) Model() (*fga.AuthorizationModel, error) {
	return parseModel(p.version)
}

func parseModel(version string) (*fga.AuthorizationModel, error) {
	dsl, ok := models[version]
	if !ok {
		return nil, fmt.Errorf("unknown authorization model version %q", version)
	}

	raw, err := transformer.TransformDSLToJSON(dsl)
	if err != nil {
		return nil, fmt.Errorf("invalid authorization model %s: %w", version, err)
	}

	var parsed struct {
		SchemaVersion   string               `json:"schema_version"`
		TypeDefinitions []fga.TypeDefinition `json:"type_definitions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode authorization model %s: %w", version, err)
	}

	model := new(fga.AuthorizationModel)
	model.SchemaVersion = parsed.SchemaVersion
	model.TypeDefinitions = parsed.TypeDefinitions

	return model, nil
}

func NewAuthorizationModelProvider(version string) *AuthorizationModelProvider {
	p := new(AuthorizationModelProvider)
	p.version = version

	return p
}
