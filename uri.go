package xmlentity

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// fixURI turns common non-URI spellings into something url.Parse
// handles: backslashes, Windows drive letters, "//host" paths and
// spaces.
func fixURI(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	if len(s) >= 2 {
		if s[1] == ':' {
			if c := s[0]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				s = "/" + s
			}
		} else if s[0] == '/' && s[1] == '/' {
			s = "file:" + s
		}
	}
	return strings.ReplaceAll(s, " ", "%20")
}

// userDir returns the working directory as a file URI ending in '/'
func userDir() (*url.URL, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, `failed to get working directory`)
	}
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

func isAbsoluteURI(u *url.URL) bool {
	// a one letter scheme is a drive letter
	return len(u.Scheme) > 1
}

// ExpandSystemID resolves systemID against baseSystemID. An empty base
// means the working directory. Absolute system ids are returned as is.
//
// When strict is false, a system id or base that cannot be parsed makes
// the system id come back unchanged instead of failing.
func ExpandSystemID(systemID, baseSystemID string, strict bool) (string, error) {
	if systemID == "" {
		return "", nil
	}

	id, err := url.Parse(fixURI(systemID))
	if err != nil {
		if strict {
			return "", errors.Wrapf(err, `malformed system id %q`, systemID)
		}
		return systemID, nil
	}
	if isAbsoluteURI(id) {
		return systemID, nil
	}

	base, err := expandBase(systemID, baseSystemID)
	if err != nil {
		if strict {
			return "", err
		}
		return systemID, nil
	}
	return base.ResolveReference(id).String(), nil
}

func expandBase(systemID, baseSystemID string) (*url.URL, error) {
	if baseSystemID == "" || baseSystemID == systemID {
		return userDir()
	}

	base, err := url.Parse(fixURI(baseSystemID))
	if err != nil {
		return nil, errors.Wrapf(err, `malformed base system id %q`, baseSystemID)
	}
	if isAbsoluteURI(base) {
		return base, nil
	}

	dir, err := userDir()
	if err != nil {
		return nil, err
	}
	return dir.ResolveReference(base), nil
}
