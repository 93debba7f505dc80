package mcpserver

// ContentFormatContract describes the layout and file formats of a content
// tree.
const ContentFormatContract = `# Kholles Content Format

A content tree has two subtrees under its root:

- ` + "`proofs/`" + `: proof documents, any depth, files ending in ` + "`.md`" + `.
- ` + "`weeks/`" + `: week descriptors, any depth, files named ` + "`<number>.yaml`" + `.

Files with other extensions are ignored.

## Proof documents

` + "```" + `markdown
---
pid: 12                       # REQUIRED: unsigned integer, unique across the tree
title: Théorème de Rolle      # REQUIRED: non-empty
note: Vu en cours             # OPTIONAL
authors: [Alice, Bob]         # REQUIRED: list, may be empty
date: 01/09/2024              # REQUIRED: dd/mm/yyyy
tags: [analyse]               # REQUIRED: list, may be empty
---
Markdown body, kept byte for byte.
` + "```" + `

Rules:

1. The file starts with a ` + "`---`" + ` line; leading blank lines are tolerated.
2. The front matter ends at the next ` + "`---`" + ` line. Everything after it is the body.
3. Dates are day/month/year with zero padding. Timestamps are rejected; run
   ` + "`kholles migrate`" + ` to rewrite legacy timestamp dates.
4. Values are never coerced: ` + "`pid: 1.5`" + `, ` + "`pid: \"1\"`" + ` and ` + "`title: 2024`" + ` are errors.
   Quote numeric titles and authors.

## Week descriptors

The week number is the file name without ` + "`.yaml`" + `: ` + "`weeks/07.yaml`" + ` is week 7.
Numbers run from 1 to 255 and must be unique across the tree.

` + "```" + `yaml
date: 02/09/2024              # REQUIRED: dd/mm/yyyy
description: Suites réelles   # REQUIRED: string, may be empty
proofs: [12, 14, 3]           # REQUIRED: proof ids, in presentation order
` + "```" + `

A proof id that matches no proof is shown as missing; it is not an error.
`
