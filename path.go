package urlmap

import "strings"

// toggleTrailingSlash adds a trailing slash to path or removes it.
// It reports false for the root path.
func toggleTrailingSlash(path string) (string, bool) {
	switch {
	case len(path) == 0 || path == "/":
		return "", false
	case path[len(path)-1] == '/':
		return path[:len(path)-1], true
	}

	return path + "/", true
}

// joinPath prefixes path with prefix, dropping a trailing slash of prefix.
func joinPath(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}

	return strings.TrimSuffix(prefix, "/") + path
}

// joinEndpoint prefixes endpoint with the group name.
func joinEndpoint(name, endpoint string) string {
	if name == "" {
		return endpoint
	}

	return name + "." + endpoint
}
