// Package render writes the publishable outputs for each source
// artifact: the three serializations under publish/, reusable XHTML
// fragments under fragments/, and browsable HTML pages under pages/.
package render

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/service"
)

// DerivedSource is implemented by loaded resources that produce
// additional derived outputs beyond the standard serializations, such
// as a value set's expansion fragment.
type DerivedSource interface {
	RenderDerived(ctx context.Context, p *Pipeline, f *fetch.FetchedFile) error
}

// Pipeline renders artifacts into an output directory tree. It is safe
// to call Render for different files from different goroutines as long
// as their names do not collide.
type Pipeline struct {
	// Out is the output root. publish/, fragments/ and pages/ are
	// created beneath it.
	Out string

	// Links resolves canonical references to local page targets. May be
	// nil, in which case no links are generated.
	Links service.LinkResolver

	// Expander expands value sets for derived outputs.
	Expander service.Expander

	// Narrative generates narrative for derived outputs.
	Narrative service.NarrativeGenerator

	// Metrics may be nil.
	Metrics *igp.Metrics

	Log *slog.Logger
}

// NewPipeline creates a render pipeline rooted at out.
func NewPipeline(out string, links service.LinkResolver, expander service.Expander, narrative service.NarrativeGenerator, metrics *igp.Metrics, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Out:       out,
		Links:     links,
		Expander:  expander,
		Narrative: narrative,
		Metrics:   metrics,
		Log:       log,
	}
}

// Render writes every output for one artifact: the XML, JSON and Turtle
// serializations, the escaped-source fragments, the narrative fragment,
// and any derived outputs the loaded resource contributes. Files
// without an element tree have nothing to render.
func (p *Pipeline) Render(ctx context.Context, f *fetch.FetchedFile) error {
	if err := p.render(ctx, f); err != nil {
		if p.Metrics != nil {
			p.Metrics.RecordRender(true)
		}
		return err
	}
	if p.Metrics != nil {
		p.Metrics.RecordRender(false)
	}
	return nil
}

func (p *Pipeline) render(ctx context.Context, f *fetch.FetchedFile) error {
	if f.Element == nil {
		return fmt.Errorf("%s has no content to render", f.Name)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	base := fmt.Sprintf("%s-%s", f.Element.Name, f.ID)
	fragBase := f.ID
	if f.ID == "" {
		base = f.Element.Name
		fragBase = f.Element.Name
	}

	xmlSource, err := element.ComposeXML(f.Element)
	if err != nil {
		return fmt.Errorf("rendering %s as xml: %w", f.Name, err)
	}
	jsonSource, err := element.ComposeJSON(f.Element)
	if err != nil {
		return fmt.Errorf("rendering %s as json: %w", f.Name, err)
	}
	ttlSource, err := element.ComposeTurtle(f.Element)
	if err != nil {
		return fmt.Errorf("rendering %s as turtle: %w", f.Name, err)
	}

	for _, out := range []struct {
		ext    string
		source []byte
	}{
		{"xml", xmlSource},
		{"json", jsonSource},
		{"ttl", ttlSource},
	} {
		if err := p.writePublish(base+"."+out.ext, out.source); err != nil {
			return err
		}
		fragment := "<pre>" + p.linkify(html.EscapeString(string(out.source))) + "</pre>"
		if err := p.Fragment(fmt.Sprintf("%s-%s-html", fragBase, out.ext), fragment); err != nil {
			return err
		}
	}

	// Narrative fragment: the resource's own narrative, or empty when
	// it has none yet.
	if err := p.Fragment(fragBase+"-html", f.Element.Narrative()); err != nil {
		return err
	}

	if derived, ok := f.Resource.(DerivedSource); ok {
		if err := derived.RenderDerived(ctx, p, f); err != nil {
			return err
		}
	}

	p.Log.Debug("rendered artifact", "name", f.Name, "base", base)
	return nil
}

// writePublish writes one serialization under publish/.
func (p *Pipeline) writePublish(name string, source []byte) error {
	dir := filepath.Join(p.Out, "publish")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating publish directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// urlPattern matches candidate hyperlink targets in escaped source.
var urlPattern = regexp.MustCompile(`https?://[^\s"&<>\\]+`)

// linkify wraps resolvable URLs in the already-escaped text with
// anchors pointing at their local pages.
func (p *Pipeline) linkify(escaped string) string {
	if p.Links == nil {
		return escaped
	}
	return urlPattern.ReplaceAllStringFunc(escaped, func(url string) string {
		target, ok := p.Links.ResolveLink(url)
		if !ok {
			return url
		}
		return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(target), url)
	})
}
