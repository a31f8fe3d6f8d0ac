package xmlentity

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type defaultOpener struct {
	client *http.Client
}

// DefaultOpener opens file: URIs and plain paths from the local file
// system, and http: and https: URIs with client. A nil client means
// http.DefaultClient.
func DefaultOpener(client *http.Client) Opener {
	if client == nil {
		client = http.DefaultClient
	}
	return &defaultOpener{client: client}
}

func (o *defaultOpener) Open(ctx context.Context, systemID string) (io.ReadCloser, string, error) {
	u, err := url.Parse(systemID)
	if err != nil {
		return nil, "", errors.Wrapf(err, `failed to parse system id %q`, systemID)
	}

	switch strings.ToLower(u.Scheme) {
	case "":
		f, err := os.Open(filepath.FromSlash(systemID))
		if err != nil {
			return nil, "", errors.Wrapf(err, `failed to open %q`, systemID)
		}
		return f, systemID, nil
	case "file":
		p := u.Path
		// "/C:/dir" on Windows
		if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		f, err := os.Open(filepath.FromSlash(p))
		if err != nil {
			return nil, "", errors.Wrapf(err, `failed to open %q`, systemID)
		}
		return f, systemID, nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, systemID, nil)
		if err != nil {
			return nil, "", errors.Wrapf(err, `failed to create request for %q`, systemID)
		}
		res, err := o.client.Do(req)
		if err != nil {
			return nil, "", errors.Wrapf(err, `failed to fetch %q`, systemID)
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, "", errors.Errorf(`failed to fetch %q: %s`, systemID, res.Status)
		}
		final := systemID
		if res.Request != nil && res.Request.URL != nil {
			final = res.Request.URL.String()
		}
		return res.Body, final, nil
	}
	return nil, "", errors.Wrapf(ErrUnsupportedScheme, `%q`, u.Scheme)
}
