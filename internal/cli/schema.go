package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configSchema documents the configuration document shape from spec.md §6.
// It is a plain string rather than a generated JSON Schema: the document
// has no code-generation source of truth to derive one from, and the
// pack carries no JSON-schema library any project actually needs.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "versio configuration document",
  "type": "object",
  "properties": {
    "options": {
      "type": "object",
      "properties": {
        "prev_tag": {"type": "string", "default": "versio-prev"},
        "signing": {
          "type": "object",
          "properties": {
            "commits": {"type": "string", "enum": ["off", "on"]},
            "tags": {"type": "string", "enum": ["off", "on", "annotated"]},
            "key_path": {"type": "string"}
          }
        }
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "id"],
        "properties": {
          "name": {"type": "string"},
          "id": {"type": "integer", "minimum": 0},
          "root": {"type": "string", "default": "."},
          "includes": {"type": "array", "items": {"type": "string"}},
          "excludes": {"type": "array", "items": {"type": "string"}},
          "depends": {"type": "object"},
          "changelog": {"type": ["string", "object"]},
          "version": {"type": "object"},
          "also": {"type": "array"},
          "tag_prefix": {"type": "string"},
          "tag_prefix_separator": {"type": "string", "default": "-"},
          "subs": {"type": "object"},
          "labels": {"type": ["string", "array"]},
          "hooks": {"type": "object", "properties": {"post_write": {"type": "string"}}}
        }
      }
    },
    "sizes": {
      "type": "object",
      "properties": {
        "use_angular": {"type": "boolean"},
        "major": {"type": "array", "items": {"type": "string"}},
        "minor": {"type": "array", "items": {"type": "string"}},
        "patch": {"type": "array", "items": {"type": "string"}},
        "none": {"type": "array", "items": {"type": "string"}},
        "fail": {"type": "array", "items": {"type": "string"}}
      }
    },
    "commit": {
      "type": "object",
      "properties": {
        "author": {"type": "string"},
        "email": {"type": "string"},
        "message": {"type": "string"}
      }
    }
  }
}
`

// newSchemaCmd prints the configuration document's JSON Schema.
func newSchemaCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "print the configuration document's JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), configSchema)
			return nil
		},
	}
}
