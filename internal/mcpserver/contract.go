package mcpserver

// DocumentFormatContract describes the canonical Markdown article format that
// LLM consumers should follow when authoring documents.
const DocumentFormatContract = `# Ansuz Article Format Contract

Every Markdown article stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL – falls back to the first H1
date: 2025-01-15                    # OPTIONAL – ISO-8601 date or datetime
categories: engineering             # OPTIONAL – string or YAML list
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
---

Body text in standard Markdown (GFM tables, strikethrough, task lists,
autolinks, and footnotes are supported).
` + "```" + `

## Rules

1. **Front matter is optional but strict.** If the first line of the file is
   ` + "`" + `---` + "`" + `, a closing ` + "`" + `---` + "`" + ` line MUST follow; an unclosed block makes the
   whole document malformed and it will be skipped by the site build.
   A file that does not start with ` + "`" + `---` + "`" + ` is all body.
2. **Unknown front-matter keys are preserved.** Only ` + "`" + `title` + "`" + `, ` + "`" + `date` + "`" + `,
   ` + "`" + `categories` + "`" + `, and ` + "`" + `tags` + "`" + ` carry built-in meaning.
3. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `release-notes` + "`" + `).
4. **Verbatim regions.** Text inside fenced code blocks and inside
   ` + "`" + `{% raw %} ... {% endraw %}` + "`" + ` regions passes through the renderer
   untouched; use raw regions for template syntax and embeds that must not
   be interpreted as Markdown. Close every fence and every raw region.
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + `
  field ready to paste into the article body.
- Assets are stored in the shared ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference in articles using the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./assets/...` + "`" + ` — always use ` + "`" + `/assets/filename` + "`" + `.

## Example

` + "```" + `markdown
---
title: Shipping the v2 pipeline
date: 2025-01-20
categories: engineering
tags:
  - release-notes
  - pipeline
---

# Shipping the v2 pipeline

![Architecture sketch](/assets/pipeline-v2.png)

The config template stays literal:

{% raw %}
server: {{ .Host }}:{{ .Port }}
{% endraw %}
` + "```" + `
`
