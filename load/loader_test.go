package load

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
	"github.com/gofhir/igpublisher/fetch"
	"github.com/gofhir/igpublisher/registry"
	"github.com/gofhir/igpublisher/service"
	"github.com/gofhir/igpublisher/validate"
)

// recordingValidator wraps the real validator and records the order in
// which content reaches it.
type recordingValidator struct {
	inner service.InstanceValidator
	seen  []string
}

func (r *recordingValidator) Validate(ctx context.Context, source []byte, format element.Format) (*element.Element, []igp.Issue, error) {
	root, issues, err := r.inner.Validate(ctx, source, format)
	if root != nil {
		r.seen = append(r.seen, root.Name+"/"+root.ChildValue("id"))
	}
	return root, issues, err
}

func jsonFile(name, content string, resourceType igp.ResourceType) *fetch.FetchedFile {
	return &fetch.FetchedFile{
		Name:        name,
		Source:      []byte(content),
		ContentType: "application/fhir+json",
		Time:        time.Now(),
		Type:        resourceType,
	}
}

func conformanceFixtures() []*fetch.FetchedFile {
	// Deliberately out of load order.
	return []*fetch.FetchedFile{
		jsonFile("valueset.json", `{
		  "resourceType": "ValueSet",
		  "id": "vs-1",
		  "url": "http://example.org/fhir/ValueSet/vs-1",
		  "status": "active"
		}`, igp.ResourceValueSet),
		jsonFile("structuredefinition.json", `{
		  "resourceType": "StructureDefinition",
		  "id": "sd-1",
		  "url": "http://example.org/fhir/StructureDefinition/sd-1",
		  "status": "active"
		}`, igp.ResourceStructureDefinition),
		jsonFile("codesystem.json", `{
		  "resourceType": "CodeSystem",
		  "id": "cs-1",
		  "url": "http://example.org/fhir/CodeSystem/cs-1",
		  "status": "active"
		}`, igp.ResourceCodeSystem),
		jsonFile("namingsystem.json", `{
		  "resourceType": "NamingSystem",
		  "id": "ns-1",
		  "status": "active"
		}`, igp.ResourceNamingSystem),
	}
}

func TestLoadOrder(t *testing.T) {
	recording := &recordingValidator{inner: validate.NewValidator(false)}
	reg := registry.New()
	loader := NewLoader(reg, validate.NewAdapter(recording, nil, nil), nil)

	err := loader.Load(context.Background(), conformanceFixtures())
	require.NoError(t, err)

	want := []string{
		"NamingSystem/ns-1",
		"CodeSystem/cs-1",
		"ValueSet/vs-1",
		"StructureDefinition/sd-1",
	}
	assert.Equal(t, want, recording.seen, "artifacts must load in dependency order, not manifest order")
}

func TestLoadRegistersByURL(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, validate.NewAdapter(validate.NewValidator(false), nil, nil), nil)

	files := conformanceFixtures()
	require.NoError(t, loader.Load(context.Background(), files))

	vs, ok := reg.Get("http://example.org/fhir/ValueSet/vs-1")
	require.True(t, ok)
	assert.Equal(t, igp.ResourceValueSet, vs.ResourceType())

	cs, ok := reg.Get("http://example.org/fhir/CodeSystem/cs-1")
	require.True(t, ok)
	holder, ok := cs.(*CodeSystem)
	require.True(t, ok)
	assert.NotNil(t, holder.Definition())

	// The naming system has no canonical URL and stays unregistered.
	assert.Equal(t, 3, reg.Len())

	// Every conformance file carries its typed form after loading.
	for _, f := range files {
		assert.NotNil(t, f.Resource, "%s should carry a typed resource", f.Name)
		assert.NotNil(t, f.Element, "%s should carry an element tree", f.Name)
	}
}

func TestLoadDuplicateURL(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, validate.NewAdapter(validate.NewValidator(false), nil, nil), nil)

	a := jsonFile("a.json", `{
	  "resourceType": "CodeSystem",
	  "id": "cs-a",
	  "url": "http://example.org/fhir/CodeSystem/dup"
	}`, igp.ResourceCodeSystem)
	b := jsonFile("b.json", `{
	  "resourceType": "CodeSystem",
	  "id": "cs-b",
	  "url": "http://example.org/fhir/CodeSystem/dup"
	}`, igp.ResourceCodeSystem)

	require.NoError(t, loader.Load(context.Background(), []*fetch.FetchedFile{a, b}))

	assert.False(t, a.Outcome.HasErrors())
	require.NotNil(t, b.Outcome)
	assert.True(t, b.Outcome.HasErrors(), "second registration of the same URL is an error on that artifact")
}

func TestLoadMalformedIsolated(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, validate.NewAdapter(validate.NewValidator(false), nil, nil), nil)

	broken := jsonFile("broken.json", `{"resourceType": `, igp.ResourceCodeSystem)
	good := jsonFile("codesystem.json", `{
	  "resourceType": "CodeSystem",
	  "id": "cs-1",
	  "url": "http://example.org/fhir/CodeSystem/cs-1"
	}`, igp.ResourceCodeSystem)

	require.NoError(t, loader.Load(context.Background(), []*fetch.FetchedFile{broken, good}))

	assert.True(t, broken.Outcome.HasErrors())
	assert.Nil(t, broken.Resource)
	_, ok := reg.Get("http://example.org/fhir/CodeSystem/cs-1")
	assert.True(t, ok, "a malformed sibling must not block loading")
}

func TestLoadSkipsRetainedState(t *testing.T) {
	recording := &recordingValidator{inner: validate.NewValidator(false)}
	reg := registry.New()
	loader := NewLoader(reg, validate.NewAdapter(recording, nil, nil), nil)

	files := conformanceFixtures()
	require.NoError(t, loader.Load(context.Background(), files))
	firstPass := len(recording.seen)

	// A second run over retained files revalidates nothing but
	// re-registers everything.
	reg.DropAll()
	require.NoError(t, loader.Load(context.Background(), files))
	assert.Equal(t, firstPass, len(recording.seen), "retained files must not be revalidated")
	assert.Equal(t, 3, reg.Len())
}
