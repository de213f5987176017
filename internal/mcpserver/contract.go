package mcpserver

// DocumentFormatContract describes the tag document format that LLM
// consumers should follow when reading nodes or creating tags.
const DocumentFormatContract = `# Tag Document Format

Tag documents are YAML files (*.yaml, *.yml, *.tag) holding one root
compound. Every tag carries its explicit type.

## Structure

` + "```" + `yaml
name: Level                 # OPTIONAL – document name
tags:                       # REQUIRED – entries of the root compound
  - name: version
    type: int
    value: 3
  - name: spawn
    type: int_array
    value: [0, 64, 0]
  - name: player
    type: compound
    value:
      - name: health
        type: float
        value: 20
  - name: items
    type: list
    elem: string            # REQUIRED for lists – the element type
    value:
      - value: stone
` + "```" + `

## Types

byte, short, int, long, float, double, string, byte_array, int_array,
long_array, list, compound.

## Rules

1. **Names are unique** inside a compound. List items have no name.
2. **Lists are homogeneous.** Every item has the list's ` + "`" + `elem` + "`" + ` type.
3. **Integers are range checked** against their type (byte is -128..127).
4. **Arrays** are edited as whitespace or comma separated integers.
5. **Nodes** are addressed by the numeric ids returned by ` + "`" + `list_tree` + "`" + `.
   Ids stay stable while a node exists and are never reused.
6. **Edits stay in memory** until ` + "`" + `save_all` + "`" + ` writes them back.
`
