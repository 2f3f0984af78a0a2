package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Client used for fetching remote resources.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// The Resource type wraps a streamable scene file that lives either on the
// local filesystem or on a http/https server.
type Resource struct {
	io.ReadCloser
	url *url.URL

	// Set for resources backed by a file on the local filesystem.
	localFile string
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the file name of this resource without any leading directories.
func (r *Resource) Name() string {
	return path.Base(r.url.Path)
}

// Returns the lower-cased file extension of this resource including the dot.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Returns the filesystem path for resources that were opened from a local
// file. Remote and stream-backed resources return false.
func (r *Resource) LocalPath() (string, bool) {
	return r.localFile, r.localFile != ""
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// Absolute local paths are never resolved against relTo. The caller must close
// the returned Resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	resURL, err := resolveURL(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	var localFile string
	switch resURL.Scheme {
	case "":
		localFile = filepath.Clean(filepath.FromSlash(resURL.Path))
		reader, err = os.Open(localFile)
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = fetchRemote(resURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
		localFile:  localFile,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(filepath.ToSlash(name))
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}

// Parse pathToResource and, for relative paths, anchor it to the directory
// of relTo.
func resolveURL(pathToResource string, relTo *Resource) (*url.URL, error) {
	// Windows paths use backslashes; normalize them before parsing
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if resURL.Scheme != "" || relTo == nil || path.IsAbs(resURL.Path) || filepath.IsAbs(pathToResource) {
		return resURL, nil
	}

	relPath := resURL.Path
	resURL, _ = url.Parse(relTo.url.String())
	prefix := resURL.Path
	if resURL.Scheme == "" {
		prefix, err = filepath.Abs(relTo.url.Path)
		if err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
		}
		prefix = filepath.ToSlash(prefix)
	}
	resURL.Path = path.Join(path.Dir(prefix), relPath)

	return resURL, nil
}

func fetchRemote(resURL *url.URL) (io.ReadCloser, error) {
	resp, err := httpClient.Get(resURL.String())
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", resURL.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
	}
	return resp.Body, nil
}
