// Package templates provides embedded starter schemas for schemafaker init.
package templates

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed *.yaml
var templateFS embed.FS

// Template represents a starter schema.
type Template struct {
	ID          string
	Name        string
	Description string
	Filename    string
	// Root is the schema generated by default.
	Root string
}

// DefaultID is the template used when none is chosen.
const DefaultID = "user"

// AvailableTemplates returns all available starter schemas.
var AvailableTemplates = []Template{
	{
		ID:          "minimal",
		Name:        "Minimal",
		Description: "A single schema with three fields",
		Filename:    "minimal.yaml",
		Root:        "Item",
	},
	{
		ID:          "user",
		Name:        "Users",
		Description: "Users with an enum role, an optional age and a nested address",
		Filename:    "user.yaml",
		Root:        "User",
	},
	{
		ID:          "shop",
		Name:        "Shop",
		Description: "Products and orders with line items, for the mock server",
		Filename:    "shop.yaml",
		Root:        "Order",
	},
	{
		ID:          "iot",
		Name:        "IoT readings",
		Description: "Sensor readings to publish over MQTT",
		Filename:    "iot.yaml",
		Root:        "Reading",
	},
}

// placeholder is replaced by the file name the schema is written to.
const placeholder = "{{FILE}}"

// GetTemplate returns the Template metadata by ID.
func GetTemplate(id string) (*Template, error) {
	for i := range AvailableTemplates {
		if strings.EqualFold(AvailableTemplates[i].ID, id) {
			return &AvailableTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("unknown template: %s (available: %s)", id, strings.Join(IDs(), ", "))
}

// Render returns the template content with its usage hint pointing at file.
func Render(id, file string) ([]byte, error) {
	t, err := GetTemplate(id)
	if err != nil {
		return nil, err
	}
	data, err := templateFS.ReadFile(t.Filename)
	if err != nil {
		return nil, err
	}
	return []byte(strings.ReplaceAll(string(data), placeholder, file)), nil
}

// IDs returns the template IDs in display order.
func IDs() []string {
	ids := make([]string, len(AvailableTemplates))
	for i, t := range AvailableTemplates {
		ids[i] = t.ID
	}
	return ids
}
