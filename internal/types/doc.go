/*
Package types defines the core data structures shared across the
pipeline.

# Request Types

RequestDefinition:
  - Declarative HTTP request definition
  - Parsed from YAML or JSON files
  - Strings may contain {{name}} placeholders
  - Carries pre/post scripts and extraction rules

ResolvedRequest:
  - Structurally identical to RequestDefinition
  - Produced by variable resolution, never mutated after

# Response Types

Response:
  - Status, headers, body
  - Duration and size metrics
  - Script logs, assertion outcomes, non-fatal script error
  - Echo of the request actually sent

# Script Types

ScriptResult:
  - One script execution's logs, variable writes and assertions
  - Partial results recorded before a failure are preserved

AssertionOutcome:
  - One recorded expect(...) result, pass or fail
  - Ordered by call sequence

# Value Domain

Values crossing the script boundary are normalized into a closed
domain: string, float64, bool, nil, []any and map[string]any.
NormalizeValue performs the mapping; FormatValue renders a normalized
value for template substitution and session export.

# Variable Sources

VariableSource is the lookup capability resolution consults: named,
priority-ranked, context-aware. Higher priority wins. Absence is not an
error; it falls through to the next source.

# Field Tags

All serializable types carry JSON and YAML tags with omitempty on
optional fields, for definition files and session/profile persistence.
*/
package types
