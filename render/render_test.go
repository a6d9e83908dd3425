package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/service"
)

const valueSetSource = `{
  "resourceType": "ValueSet",
  "id": "vs-1",
  "url": "http://example.org/fhir/ValueSet/vs-1",
  "status": "active",
  "text": {
    "status": "generated",
    "div": "<div xmlns=\"http://www.w3.org/1999/xhtml\">A value set.</div>"
  }
}`

func renderedFile(t *testing.T, source string) *fetch.FetchedFile {
	t.Helper()
	root, err := element.ParseJSON([]byte(source))
	require.NoError(t, err)
	return &fetch.FetchedFile{
		Name:        "valueset.json",
		Source:      []byte(source),
		ContentType: "application/fhir+json",
		Time:        time.Now(),
		Type:        igp.ResourceValueSet,
		Element:     root,
		ID:          root.ChildValue("id"),
	}
}

func readOutput(t *testing.T, out string, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{out}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestRenderWritesSerializations(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, igp.NewMetrics(), nil)

	err := p.Render(context.Background(), renderedFile(t, valueSetSource))
	require.NoError(t, err)

	xml := readOutput(t, out, "publish", "ValueSet-vs-1.xml")
	assert.Contains(t, xml, `<ValueSet xmlns="http://hl7.org/fhir">`)
	assert.Contains(t, xml, `<id value="vs-1"/>`)

	jsonOut := readOutput(t, out, "publish", "ValueSet-vs-1.json")
	assert.Contains(t, jsonOut, `"resourceType": "ValueSet"`)

	ttl := readOutput(t, out, "publish", "ValueSet-vs-1.ttl")
	assert.Contains(t, ttl, "[a fhir:ValueSet;")

	snap := p.Metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.Renders)
	assert.Equal(t, uint64(0), snap.RendersFailed)
}

func TestRenderWritesFragmentsAndPages(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	err := p.Render(context.Background(), renderedFile(t, valueSetSource))
	require.NoError(t, err)

	for _, name := range []string{"vs-1-xml-html", "vs-1-json-html", "vs-1-ttl-html"} {
		fragment := readOutput(t, out, "fragments", name+".xhtml")
		assert.True(t, strings.HasPrefix(fragment, "<pre>"), "fragment %s should be preformatted", name)
		assert.NotContains(t, fragment, "<ValueSet", "fragment %s should escape raw markup", name)

		page := readOutput(t, out, "pages", name+".html")
		assert.Contains(t, page, `<link rel="stylesheet" href="../publish/fhir.css"/>`)
		assert.Contains(t, page, "<title>"+name+"</title>")
	}

	narrative := readOutput(t, out, "fragments", "vs-1-html.xhtml")
	assert.Contains(t, narrative, "A value set.")
}

func TestRenderWithoutIDFallsBackToTypeName(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	source := `{"resourceType": "CodeSystem", "status": "active"}`
	err := p.Render(context.Background(), renderedFile(t, source))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "publish", "CodeSystem.xml"))
	for _, name := range []string{"CodeSystem-xml-html", "CodeSystem-json-html", "CodeSystem-ttl-html", "CodeSystem-html"} {
		assert.FileExists(t, filepath.Join(out, "fragments", name+".xhtml"))
	}
	entries, err := os.ReadDir(filepath.Join(out, "fragments"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "-"), "fragment %s lost its base name", e.Name())
	}
}

func TestRenderEmptyNarrativeFragment(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	source := `{"resourceType": "CodeSystem", "id": "cs-1", "status": "active"}`
	err := p.Render(context.Background(), renderedFile(t, source))
	require.NoError(t, err)

	narrative := readOutput(t, out, "fragments", "cs-1-html.xhtml")
	assert.Empty(t, narrative)
}

func TestRenderLinkResolution(t *testing.T) {
	out := t.TempDir()
	links := service.LinkResolverFunc(func(value string) (string, bool) {
		if value == "http://example.org/fhir/ValueSet/vs-1" {
			return "ValueSet-vs-1.html", true
		}
		return "", false
	})
	p := NewPipeline(out, links, nil, nil, nil, nil)

	err := p.Render(context.Background(), renderedFile(t, valueSetSource))
	require.NoError(t, err)

	fragment := readOutput(t, out, "fragments", "vs-1-json-html.xhtml")
	assert.Contains(t, fragment, `<a href="ValueSet-vs-1.html">http://example.org/fhir/ValueSet/vs-1</a>`)
}

func TestRenderNoElement(t *testing.T) {
	p := NewPipeline(t.TempDir(), nil, nil, nil, igp.NewMetrics(), nil)
	f := &fetch.FetchedFile{Name: "broken.json"}

	err := p.Render(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, uint64(1), p.Metrics.Snapshot().RendersFailed)
}

type derivedStub struct {
	called bool
}

func (d *derivedStub) RenderDerived(ctx context.Context, p *Pipeline, f *fetch.FetchedFile) error {
	d.called = true
	return p.Fragment(f.ID+"-expansion", "<div>derived</div>")
}

func TestRenderDerivedDispatch(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	f := renderedFile(t, valueSetSource)
	stub := &derivedStub{}
	f.Resource = stub

	err := p.Render(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, stub.called)
	assert.Contains(t, readOutput(t, out, "fragments", "vs-1-expansion.xhtml"), "derived")
}

func TestFragmentError(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	require.NoError(t, p.FragmentError("vs-1-expansion", "expansion failed: no <server>"))

	fragment := readOutput(t, out, "fragments", "vs-1-expansion.xhtml")
	assert.Contains(t, fragment, `<p style="color: maroon; font-weight: bold">`)
	assert.Contains(t, fragment, "&lt;server&gt;")
}

func TestWriteAssets(t *testing.T) {
	out := t.TempDir()
	p := NewPipeline(out, nil, nil, nil, nil, nil)

	require.NoError(t, p.WriteAssets())
	css := readOutput(t, out, "publish", "fhir.css")
	assert.Contains(t, css, "font-family")
}
