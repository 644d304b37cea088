package arcgis

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseURLIndex splits a sublayer endpoint of the form <root>/<index> into its parts.
// ok is false when the last path segment is not an index, in which case root is the
// input without trailing slashes.
func ParseURLIndex(raw string) (root string, index int, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/"), 0, false
	}

	p := strings.TrimRight(u.Path, "/")
	slash := strings.LastIndex(p, "/")
	if slash == -1 {
		u.Path = p
		return u.String(), 0, false
	}

	idx, err := strconv.Atoi(p[slash+1:])
	if err != nil || idx < 0 {
		u.Path = p
		return u.String(), 0, false
	}

	u.Path = p[:slash]
	return u.String(), idx, true
}

// SublayerURL joins a service root and a sublayer index.
func SublayerURL(root string, index int) string {
	u, err := url.Parse(root)
	if err != nil {
		return strings.TrimRight(root, "/") + "/" + strconv.Itoa(index)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strconv.Itoa(index)
	return u.String()
}

// endpoint appends an optional path suffix and query values to a service url,
// keeping any values (tokens etc) already present on it.
func endpoint(raw, suffix string, vals url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if suffix != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + suffix
	}
	q := u.Query()
	for k, vs := range vals {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
