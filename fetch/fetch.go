// Package fetch retrieves the raw source artifacts named by an
// implementation guide. The default fetcher reads the local filesystem;
// the Fetcher interface is the extension point for other storage.
package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/element"
)

// FetchedFile is one source artifact and the state the pipeline derives
// from it. The raw fields are set by the fetcher; the derived fields are
// populated as the pipeline progresses. A file is replaced, not mutated,
// when its source changes.
type FetchedFile struct {
	// Name is the source locator as declared in the guide.
	Name string

	// Path is the resolved absolute path.
	Path string

	// Source is the raw content.
	Source []byte

	// ContentType is derived from the source (e.g. application/fhir+json).
	ContentType string

	// Time is the source's last modification time.
	Time time.Time

	// Type is the resolved resource type, set by classification.
	Type igp.ResourceType

	// Element is the canonical element tree, set by validation.
	Element *element.Element

	// Resource is the typed resource object for recognized conformance
	// types, set by loading.
	Resource any

	// ID is the resource id extracted after structural parse.
	ID string

	// Outcome collects the file's validation issues.
	Outcome *igp.ValidationOutcome
}

// Format returns the file's wire format. An unclassifiable content type
// is an error, not a guess.
func (f *FetchedFile) Format() (element.Format, error) {
	format, ok := element.FormatFromContentType(f.ContentType)
	if !ok {
		return "", fmt.Errorf("unable to determine file type for %s", f.Name)
	}
	return format, nil
}

// Fetcher retrieves source artifacts. Implementations must populate
// Name, Path, Source, ContentType, and Time.
type Fetcher interface {
	// Fetch retrieves the artifact at the given locator.
	Fetch(locator string) (*FetchedFile, error)

	// FetchRelative retrieves an artifact whose locator is relative to a
	// previously fetched one (typically the guide itself).
	FetchRelative(locator string, relativeTo *FetchedFile) (*FetchedFile, error)
}

// LocalFetcher reads artifacts from the local filesystem, deriving the
// content type from the file extension.
type LocalFetcher struct{}

// NewLocalFetcher creates a filesystem fetcher.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{}
}

// Fetch implements Fetcher.
func (l *LocalFetcher) Fetch(locator string) (*FetchedFile, error) {
	path, err := filepath.Abs(locator)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", locator, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", locator, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fetching %s: is a directory", locator)
	}

	contentType, err := contentTypeForPath(path)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", locator, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", locator, err)
	}

	return &FetchedFile{
		Name:        locator,
		Path:        path,
		Source:      data,
		ContentType: contentType,
		Time:        info.ModTime(),
	}, nil
}

// FetchRelative implements Fetcher. Relative locators resolve against
// the directory of the base file; absolute locators are used as-is.
func (l *LocalFetcher) FetchRelative(locator string, relativeTo *FetchedFile) (*FetchedFile, error) {
	if relativeTo == nil || filepath.IsAbs(locator) {
		return l.Fetch(locator)
	}
	f, err := l.Fetch(filepath.Join(filepath.Dir(relativeTo.Path), locator))
	if err != nil {
		return nil, err
	}
	f.Name = locator
	return f, nil
}

func contentTypeForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/fhir+json", nil
	case ".xml":
		return "application/fhir+xml", nil
	default:
		return "", fmt.Errorf("unknown file extension %q", filepath.Ext(path))
	}
}
