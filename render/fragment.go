package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
)

// Fragment writes one XHTML fragment twice: the bare fragment under
// fragments/ for reuse in other pages, and a wrapped standalone page
// under pages/.
func (p *Pipeline) Fragment(name, content string) error {
	fragDir := filepath.Join(p.Out, "fragments")
	if err := os.MkdirAll(fragDir, 0o755); err != nil {
		return fmt.Errorf("creating fragments directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(fragDir, name+".xhtml"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing fragment %s: %w", name, err)
	}

	pageDir := filepath.Join(p.Out, "pages")
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return fmt.Errorf("creating pages directory: %w", err)
	}
	page := pageWrap(name, content)
	if err := os.WriteFile(filepath.Join(pageDir, name+".html"), []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing page %s: %w", name, err)
	}
	return nil
}

// FragmentError writes a visible error marker in place of a fragment
// that could not be produced. Rendering carries on; the page shows what
// went wrong.
func (p *Pipeline) FragmentError(name, message string) error {
	content := fmt.Sprintf(`<p style="color: maroon; font-weight: bold">%s</p>`, html.EscapeString(message))
	return p.Fragment(name, content)
}

// pageWrap turns a fragment into a standalone HTML page referencing the
// published stylesheet.
func pageWrap(title, content string) string {
	return fmt.Sprintf(`<html>
<head>
  <title>%s</title>
  <link rel="stylesheet" href="../publish/fhir.css"/>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), content)
}

// fhirCSS is the stylesheet the wrapped pages reference.
const fhirCSS = `body {
  font-family: verdana, sans-serif;
  margin: 1em;
  color: #202020;
}
pre {
  background: #f4f4f4;
  border: 1px solid #d0d0d0;
  padding: 0.5em;
  overflow-x: auto;
}
table.codes {
  border-collapse: collapse;
}
table.codes td {
  border: 1px solid #d0d0d0;
  padding: 2px 6px;
}
a {
  color: #1a4e7a;
}
`

// WriteAssets writes the shared static assets under publish/.
func (p *Pipeline) WriteAssets() error {
	dir := filepath.Join(p.Out, "publish")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating publish directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fhir.css"), []byte(fhirCSS), 0o644); err != nil {
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	return nil
}
