package multiview

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/layouts.json
var layoutsSchema []byte

// DocumentValidator checks a raw persisted collection before it is decoded.
type DocumentValidator interface {
	ValidateDocument(data []byte) error
}

// SchemaValidator validates persisted collections against the embedded JSON schema.
type SchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// ValidateDocument reports malformed JSON or schema violations.
func (v *SchemaValidator) ValidateDocument(data []byte) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("multiview: parse layouts document: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("multiview: layouts document failed validation: %w", err)
	}
	return nil
}

func (v *SchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		const name = "layouts.json"
		if err := compiler.AddResource(name, bytes.NewReader(layoutsSchema)); err != nil {
			v.err = fmt.Errorf("multiview: load layouts schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(name)
		if v.err != nil {
			v.err = fmt.Errorf("multiview: compile layouts schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

// validateLayout checks the structural rules enforced on commit.
func validateLayout(op string, layout Layout) error {
	if strings.TrimSpace(layout.Name) == "" {
		return validationError(op, "layout name is required")
	}
	if err := validateGrid(op, GridConfig{Cols: layout.Cols, Rows: layout.Rows}); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(layout.Panels))
	for _, panel := range layout.Panels {
		if panel.ID == "" {
			return validationError(op, "panel id is required")
		}
		if _, dup := seen[panel.ID]; dup {
			return validationError(op, "duplicate panel id %s", panel.ID)
		}
		seen[panel.ID] = struct{}{}
		if err := validatePanel(op, panel); err != nil {
			return err
		}
	}
	if layout.Audience != "" && !layout.Audience.Valid() {
		return validationError(op, "unknown audience %q", layout.Audience)
	}
	return nil
}

func validatePanel(op string, panel Panel) error {
	if panel.ColSpan < 0 || panel.RowSpan < 0 {
		return validationError(op, "panel %s spans must be positive", panel.ID)
	}
	if panel.RefreshIntervalSeconds < 0 {
		return validationError(op, "panel %s refresh interval must not be negative", panel.ID)
	}
	return nil
}

// MaxGridSide bounds cols and rows of a layout grid.
const MaxGridSide = 12

func validateGrid(op string, grid GridConfig) error {
	if grid.Cols <= 0 || grid.Rows <= 0 {
		return validationError(op, "grid must be at least 1x1, got %dx%d", grid.Cols, grid.Rows)
	}
	if grid.Cols > MaxGridSide || grid.Rows > MaxGridSide {
		return validationError(op, "grid must be at most %dx%d, got %dx%d", MaxGridSide, MaxGridSide, grid.Cols, grid.Rows)
	}
	return nil
}
